package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/snip/internal/debug"
	"github.com/standardbeagle/snip/internal/display"
	"github.com/standardbeagle/snip/internal/extractor"
	"github.com/standardbeagle/snip/internal/types"
	"github.com/standardbeagle/snip/internal/watch"
)

var (
	errMissingFile   = errors.New("a source file is required (-f FILE)")
	errMissingTarget = errors.New("a target method name is required (-t NAME)")
)

// extractRequests builds one request per file: -f first, then positional args.
func extractRequests(c *cli.Context) ([]extractor.Request, error) {
	target := c.String("target")
	if target == "" {
		return nil, errMissingTarget
	}

	var files []string
	if f := c.String("filepath"); f != "" {
		files = append(files, f)
	}
	files = append(files, c.Args().Slice()...)
	if len(files) == 0 {
		return nil, errMissingFile
	}

	reqs := make([]extractor.Request, len(files))
	for i, f := range files {
		reqs[i] = extractor.Request{Path: f, Target: target, Language: c.String("language")}
	}
	return reqs, nil
}

// extractCommand prints one result per file. A missing target is a normal
// result; read, grammar and traversal failures make the command fail after
// the other files have been printed.
func extractCommand(c *cli.Context) error {
	reqs, err := extractRequests(c)
	if err != nil {
		return err
	}
	svc, err := newService(c)
	if err != nil {
		return err
	}

	decls, extractErr := svc.ExtractAll(c.Context, reqs)

	printed := make([]*types.Declaration, 0, len(decls))
	for _, d := range decls {
		if d != nil {
			printed = append(printed, d)
		}
	}

	cwd, _ := os.Getwd()
	formatter := display.NewDeclarationFormatter(display.FormatterOptions{
		Format:    svc.Config().Extract.Format,
		ShowPath:  len(reqs) > 1,
		ShowLines: len(reqs) > 1,
		Root:      cwd,
	})
	if len(printed) > 0 {
		if err := formatter.Write(c.App.Writer, printed); err != nil {
			return err
		}
	}

	debug.Log("CLI", "extracted %d/%d files\n", len(printed), len(reqs))
	return extractErr
}

// watchCommand prints the declaration, then reprints it after every change
// until interrupted. Errors are reported and watching continues.
func watchCommand(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("watch takes a single file, got extra arguments: %v", c.Args().Slice())
	}
	reqs, err := extractRequests(c)
	if err != nil {
		return err
	}
	svc, err := newService(c)
	if err != nil {
		return err
	}

	formatter := display.NewDeclarationFormatter(display.FormatterOptions{
		Format: svc.Config().Extract.Format,
	})
	out, errOut := c.App.Writer, c.App.ErrWriter

	fw, err := watch.NewFileWatcher(svc, reqs[0], func(decl *types.Declaration, err error) {
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return
		}
		_ = formatter.Write(out, []*types.Declaration{decl})
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(errOut, "watching %s for %q (ctrl-c to stop)\n", reqs[0].Path, reqs[0].Target)
	return fw.Run(ctx)
}

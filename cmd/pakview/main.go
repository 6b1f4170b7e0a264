package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/flaneur2020/pakview/pakview"
	"github.com/flaneur2020/pakview/pakview/cache"
	"github.com/flaneur2020/pakview/pakview/lister"
	"github.com/flaneur2020/pakview/pakview/logger"
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=1.2.3"
var version = "dev"

var (
	unrealPak   string
	toolArgs    []string
	timeout     time.Duration
	verbose     int
	quiet       bool
	noProgress  bool
	noCache     bool
	noColor     bool
	cacheDir    string
	extensions  []string
	concurrency int

	pathPattern  string
	showWarnings bool
	showFiles    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "pakview",
		Short:         "Browse the contents of Unreal Engine .pak archives",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetLogLevel(logger.LevelFromVerbosity(verbose, quiet))
			if noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&unrealPak, "unrealpak", "", "Path to the UnrealPak binary (default $UNREALPAK, $unrealPak or UnrealPak on PATH)")
	flags.StringArrayVar(&toolArgs, "tool-arg", nil, "Extra argument passed to UnrealPak after -list <ARCHIVE> (repeatable)")
	flags.DurationVar(&timeout, "timeout", 0, "Abort a listing, archive hashing included, that takes longer than this (0 waits forever)")
	flags.CountVarP(&verbose, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Only log errors and hide progress output")
	flags.BoolVar(&noProgress, "no-progress", false, "Disable progress output (enabled by default on terminals)")
	flags.BoolVar(&noCache, "no-cache", false, "Always run UnrealPak instead of reusing cached listings")
	flags.StringVar(&cacheDir, "cache-dir", "", "Listing cache directory (default <user cache dir>/pakview)")
	flags.StringSliceVar(&extensions, "ext", pakview.DefaultExtensions, "Accepted archive extensions")
	flags.BoolVar(&noColor, "no-color", false, "Disable coloured output")

	// ls command
	lsCmd := &cobra.Command{
		Use:   "ls <ARCHIVE>...",
		Short: "List the files stored in one or more archives",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runLs,
	}
	lsCmd.Flags().StringVarP(&pathPattern, "path", "p", "", "Only list entries under this file or directory path")
	lsCmd.Flags().BoolVar(&showWarnings, "warnings", false, "Report listing lines that could not be parsed")
	lsCmd.Flags().IntVarP(&concurrency, "jobs", "j", 4, "Number of archives listed in parallel")

	// tree command
	treeCmd := &cobra.Command{
		Use:   "tree <ARCHIVE>",
		Short: "Show the directory tree of an archive",
		Args:  cobra.ExactArgs(1),
		RunE:  runTree,
	}
	treeCmd.Flags().BoolVarP(&showFiles, "files", "f", false, "Also show files under each directory")

	// dir command
	dirCmd := &cobra.Command{
		Use:   "dir <ARCHIVE> <DIR>",
		Short: "List the files directly inside one directory of an archive",
		Args:  cobra.ExactArgs(2),
		RunE:  runDir,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the pakview version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	rootCmd.AddCommand(lsCmd, treeCmd, dirCmd, versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// newLoader wires the listing chain: UnrealPak, optionally behind the
// listing cache, with progress output when enabled.
func newLoader(progress bool) (pakview.ArchiveLoader, func(), error) {
	binary := lister.ResolveBinary(unrealPak)
	var l lister.Lister = lister.NewExecLister(binary, toolArgs...)
	if progress {
		l = &spinnerLister{next: l}
	}

	cleanup := func() {}
	if !noCache {
		dir := cacheDir
		if dir == "" {
			var err error
			if dir, err = cache.DefaultDir(); err != nil {
				return nil, nil, fmt.Errorf("resolve cache dir: %w", err)
			}
		}
		c, err := cache.New(dir)
		if err != nil {
			logger.Warn("Listing cache disabled: %v", err)
		} else {
			opts := []cache.ListerOption{cache.WithKeySalt(cacheSalt(binary, toolArgs))}
			if progress {
				opts = append(opts, cache.WithProgress(newHashProgress(os.Stderr)))
			}
			l = cache.NewLister(l, c, opts...)
			cleanup = func() { c.Close() }
		}
	}

	loader := pakview.NewArchiveLoader(l,
		pakview.WithTimeout(timeout),
		pakview.WithExtensions(extensions...),
	)
	return loader, cleanup, nil
}

func cacheSalt(binary string, args []string) string {
	salt := binary
	for _, a := range args {
		salt += "\x00" + a
	}
	return salt
}

func loadOne(cmd *cobra.Command, path string) (*pakview.Archive, error) {
	loader, cleanup, err := newLoader(progressEnabled())
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return loader.Load(cmd.Context(), path)
}

func runLs(cmd *cobra.Command, args []string) error {
	// progress bars from parallel loads would interleave
	loader, cleanup, err := newLoader(progressEnabled() && len(args) == 1)
	if err != nil {
		return err
	}
	defer cleanup()

	archives, err := pakview.LoadAll(cmd.Context(), loader, args, concurrency)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, archive := range archives {
		if len(archives) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "==> %s <==\n", archive.Path)
		}

		entries := archive.FilterEntries(pathPattern)
		if err := writeEntryTable(out, entries, false); err != nil {
			return err
		}
		if showWarnings {
			writeDiagnostics(cmd.ErrOrStderr(), archive)
		}
	}
	return nil
}

func runTree(cmd *cobra.Command, args []string) error {
	archive, err := loadOne(cmd, args[0])
	if err != nil {
		return err
	}
	return writeTree(cmd.OutOrStdout(), archive.Tree, showFiles)
}

func runDir(cmd *cobra.Command, args []string) error {
	archive, err := loadOne(cmd, args[0])
	if err != nil {
		return err
	}

	dirPath, err := resolveDir(archive.Tree, args[1])
	if err != nil {
		return err
	}
	return writeEntryTable(cmd.OutOrStdout(), archive.Tree.FilesIn(dirPath), true)
}

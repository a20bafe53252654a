package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"muse/internal/importer"
	"muse/internal/library"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var verboseFlag bool

	rootCmd := &cobra.Command{
		Use:           "muse",
		Short:         "Music library importer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(newImportCommand(&configFlag, &verboseFlag))
	rootCmd.AddCommand(newWatchCommand(&configFlag, &verboseFlag))
	rootCmd.AddCommand(newListCommand(&configFlag, &verboseFlag))
	rootCmd.AddCommand(newRepairCommand(&configFlag, &verboseFlag))
	rootCmd.AddCommand(newRescanArtCommand(&configFlag, &verboseFlag))
	rootCmd.AddCommand(newFoldersCommand(&configFlag, &verboseFlag))

	return rootCmd
}

func newImportCommand(configFlag *string, verboseFlag *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>...",
		Short: "Import audio files from the given paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(*configFlag, *verboseFlag)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signalContext()
			defer stop()

			app.imports.Tracker().SetEmitter(progressEmitter(cmd.OutOrStdout()))

			run, err := app.imports.ImportPaths(ctx, args, false)
			if err != nil {
				return err
			}

			select {
			case <-run.Done():
			case <-ctx.Done():
				return ctx.Err()
			}

			fmt.Fprintln(cmd.OutOrStdout(), "done")
			return nil
		},
	}
}

func newWatchCommand(configFlag *string, verboseFlag *bool) *cobra.Command {
	var rescanEvery time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch configured folders and import changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(*configFlag, *verboseFlag)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signalContext()
			defer stop()

			// Catch up once before relying on change events.
			if err := app.imports.RunWatchedScan(ctx); err != nil {
				return err
			}

			return app.watch.Watch(ctx, rescanEvery)
		},
	}

	cmd.Flags().DurationVar(&rescanEvery, "rescan-every", time.Hour, "Full rescan interval, 0 to disable")
	return cmd
}

func newListCommand(configFlag *string, verboseFlag *bool) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list albums|tracks",
		Short: "List library contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(*configFlag, *verboseFlag)
			if err != nil {
				return err
			}
			defer app.Close()

			switch args[0] {
			case "albums":
				albums, err := app.browse.ListAlbums(cmd.Context(), limit)
				if err != nil {
					return err
				}
				printAlbums(cmd.OutOrStdout(), albums)
				return nil
			case "tracks":
				songs, err := app.browse.ListSongs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				printSongs(cmd.OutOrStdout(), songs)
				return nil
			default:
				return fmt.Errorf("unknown listing %q, expected albums or tracks", args[0])
			}
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows to list")
	return cmd
}

func newRepairCommand(configFlag *string, verboseFlag *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Re-link songs whose album record is missing or stale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(*configFlag, *verboseFlag)
			if err != nil {
				return err
			}
			defer app.Close()

			repaired, err := app.imports.Repair(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "repaired %d songs\n", repaired)
			return nil
		},
	}
}

func newRescanArtCommand(configFlag *string, verboseFlag *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rescan-art <album-id>",
		Short: "Re-resolve artwork for one album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(*configFlag, *verboseFlag)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.imports.RescanAlbumArtwork(cmd.Context(), args[0])
		},
	}
}

func newFoldersCommand(configFlag *string, verboseFlag *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Manage watched folders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List watched folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(*configFlag, *verboseFlag)
			if err != nil {
				return err
			}
			defer app.Close()

			folders, err := app.folders.List(cmd.Context())
			if err != nil {
				return err
			}
			printFolders(cmd.OutOrStdout(), folders)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <path>",
		Short: "Add a watched folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(*configFlag, *verboseFlag)
			if err != nil {
				return err
			}
			defer app.Close()

			folder, err := app.folders.Add(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "watching %s (#%d)\n", folder.Path, folder.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a watched folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse folder id %q: %w", args[0], err)
			}

			app, err := openApp(*configFlag, *verboseFlag)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.folders.Delete(cmd.Context(), id)
		},
	})

	return cmd
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// progressEmitter renders tracker snapshots as they arrive. Repeated states
// with the same phase and percent stay quiet so foreground imports do not
// spam a line per song.
func progressEmitter(out io.Writer) importer.Emitter {
	var lastPhase string
	lastPercent := -1

	return func(event string, payload any) {
		switch event {
		case importer.EventStatus:
			status, ok := payload.(importer.Status)
			if !ok || !status.IsImporting {
				return
			}
			if status.Status == lastPhase && status.Percent == lastPercent {
				return
			}
			lastPhase = status.Status
			lastPercent = status.Percent
			fmt.Fprintf(out, "%3d%% %s (%d/%d)\n", status.Percent, status.Status, status.ImportedTracks, status.TotalTracks)
		case importer.EventNotification:
			if note, ok := payload.(importer.Notification); ok {
				fmt.Fprintln(out, note.Text)
			}
		}
	}
}

func printAlbums(out io.Writer, albums []library.Album) {
	rows := make([][]string, 0, len(albums))
	for _, album := range albums {
		rows = append(rows, []string{
			album.Artist,
			album.Title,
			strconv.Itoa(album.TrackCount),
			album.Duration,
			album.ID,
		})
	}
	writeTable(out, []string{"Artist", "Album", "Tracks", "Duration", "ID"}, rows)
}

func printSongs(out io.Writer, songs []library.Song) {
	rows := make([][]string, 0, len(songs))
	for _, song := range songs {
		rows = append(rows, []string{
			song.Artist,
			song.Album,
			song.Title,
			song.Duration,
			song.FileInfo.Codec,
		})
	}
	writeTable(out, []string{"Artist", "Album", "Title", "Duration", "Codec"}, rows)
}

func printFolders(out io.Writer, folders []library.WatchedFolder) {
	rows := make([][]string, 0, len(folders))
	for _, folder := range folders {
		enabled := "yes"
		if !folder.Enabled {
			enabled = "no"
		}
		rows = append(rows, []string{
			strconv.FormatInt(folder.ID, 10),
			folder.Path,
			enabled,
		})
	}
	writeTable(out, []string{"ID", "Path", "Enabled"}, rows)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skryldev/recipebook/codec"
	"github.com/Skryldev/recipebook/recipe"
)

const shutdownTimeout = 5 * time.Second

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recipes by title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			list, err := a.book.Service.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tDIFFICULTY\tADDED\tIMAGE")
			for _, r := range list {
				b := r.Image.Bounds()
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%dx%d\n",
					r.ID, r.Title, r.Author, r.Difficulty, r.DateAdded.Format(time.DateOnly), b.Dx(), b.Dy())
			}
			return w.Flush()
		},
	}
}

type draftFlags struct {
	title, author, difficulty, date, photo string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "recipe title")
	cmd.Flags().StringVar(&f.author, "author", "", "recipe author")
	cmd.Flags().StringVar(&f.difficulty, "difficulty", "", "Easy, Medium or Hard")
	cmd.Flags().StringVar(&f.date, "date", "", "date added, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.photo, "photo", "", "photo path relative to the photo dir, absolute, or file:// URI")
}

// apply copies the flags that were set onto d.
func (a *app) apply(ctx context.Context, cmd *cobra.Command, f *draftFlags, d *recipe.Draft) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		d.Title = f.title
	}
	if changed("author") {
		d.Author = f.author
	}
	if changed("difficulty") {
		d.Difficulty = f.difficulty
	}
	if changed("date") {
		t, err := time.ParseInLocation(time.DateOnly, f.date, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", f.date, err)
		}
		d.DateAdded = t
	}
	if changed("photo") {
		img, err := a.book.Service.AttachPhoto(ctx, f.photo, d.Title)
		if err != nil {
			return err
		}
		d.Image = img
	}
	return nil
}

func (a *app) addCmd() *cobra.Command {
	f := &draftFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			var d recipe.Draft
			if err := a.apply(cmd.Context(), cmd, f, &d); err != nil {
				return err
			}
			rec, err := a.book.Service.Save(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	f := &draftFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a recipe; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.open(cmd); err != nil {
				return err
			}
			cur, err := a.book.Service.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			d := recipe.Draft{
				ID:         cur.ID,
				Title:      cur.Title,
				Author:     cur.Author,
				Difficulty: string(cur.Difficulty),
				DateAdded:  cur.DateAdded,
				Image:      cur.Image,
			}
			if err := a.apply(cmd.Context(), cmd, f, &d); err != nil {
				return err
			}
			_, err = a.book.Service.Save(cmd.Context(), d)
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.open(cmd); err != nil {
				return err
			}
			return a.book.Service.Delete(cmd.Context(), id)
		},
	}
}

func (a *app) photoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "photo <id> <ref>",
		Short: "Replace the photo of a recipe",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.open(cmd); err != nil {
				return err
			}
			ctx := cmd.Context()
			cur, err := a.book.Service.Get(ctx, id)
			if err != nil {
				return err
			}
			img, err := a.book.Service.AttachPhoto(ctx, args[1], cur.Title)
			if err != nil {
				return err
			}
			_, err = a.book.Service.Save(ctx, recipe.Draft{
				ID:         cur.ID,
				Title:      cur.Title,
				Author:     cur.Author,
				Difficulty: string(cur.Difficulty),
				DateAdded:  cur.DateAdded,
				Image:      img,
			})
			return err
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write the stored image of a recipe to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.open(cmd); err != nil {
				return err
			}
			path, err := a.book.Export(cmd.Context(), id, out)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", ".", "output directory")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recipe API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			if addr == "" {
				addr = a.book.Config().ListenAddr
			}
			srv := &http.Server{
				Addr:    addr,
				Handler: a.book.Handler(a.log),
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("starting server", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt)
			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			a.log.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("failed to shutdown server: %w", err)
			}
			a.log.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the codec version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "recipebook codec v%d\n", codec.Version)
		},
	}
}

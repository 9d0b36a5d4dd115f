package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"nestadmin/internal/admin"
	"nestadmin/internal/logging"
	"nestadmin/internal/media"
)

func newFilesCommand(ctx *commandContext) *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Uploaded assets known to the backend",
	}

	flags := &listFlags{}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				page, err := svc.Files(cmd.Context(), flags.params())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, viewPage(page))
				}
				rows := make([][]string, 0, len(page.Items))
				for _, f := range page.Items {
					rows = append(rows, []string{f.Key(), f.Name, f.ContentType, formatSize(f.Size), f.URL})
				}
				printTable(cmd, []string{"ID", "Name", "Type", "Size", "URL"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
				printPageFooter(cmd, page)
				return nil
			})
		},
	}
	flags.register(listCmd, nil, true)
	filesCmd.AddCommand(listCmd)

	filesCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete file records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				for _, id := range splitIDs(args) {
					if err := svc.DeleteFile(cmd.Context(), id); err != nil {
						return fmt.Errorf("delete file %s: %w", id, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted file %s\n", id)
				}
				return nil
			})
		},
	})

	return filesCmd
}

func formatSize(size int64) string {
	if size <= 0 {
		return ""
	}
	return humanize.IBytes(uint64(size))
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	uploadCmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload images and audio to object storage",
	}

	for _, kind := range []media.Kind{media.KindImage, media.KindAudio} {
		var register bool
		cmd := &cobra.Command{
			Use:   kind.String() + " <file>",
			Short: "Upload a " + kind.String() + " file and print its public URL",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := ctx.authenticated(cmd)
				if err != nil {
					return err
				}
				uploader, err := media.New(rt.cfg.Media, media.WithLogger(rt.logger))
				if err != nil {
					return err
				}
				// One id ties the object-storage log line to the backend registration.
				callCtx := logging.WithRequestID(cmd.Context(), uuid.NewString())
				var upload media.Upload
				if kind == media.KindAudio {
					upload, err = uploader.UploadAudio(callCtx, args[0])
				} else {
					upload, err = uploader.UploadImage(callCtx, args[0])
				}
				if err != nil {
					return err
				}
				if register {
					if _, err := rt.admin.RegisterUpload(callCtx, admin.File{
						URL:         upload.URL,
						StorageKey:  upload.Key,
						ContentType: upload.ContentType,
						Size:        upload.Size,
					}); err != nil {
						return fmt.Errorf("uploaded to %s but registering with the backend failed: %w", upload.URL, err)
					}
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, upload)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, upload.URL)
				fmt.Fprintf(out, "key=%s type=%s size=%s\n", upload.Key, upload.ContentType, formatSize(upload.Size))
				return nil
			},
		}
		cmd.Flags().BoolVar(&register, "register", false, "Also record the upload in the backend file list")
		uploadCmd.AddCommand(cmd)
	}

	return uploadCmd
}

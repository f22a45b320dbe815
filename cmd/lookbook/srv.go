package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"lookbook/internal/blobstore"
	"lookbook/internal/catalog"
	"lookbook/internal/config"
	"lookbook/internal/imaging"
	"lookbook/internal/server"
	"lookbook/internal/store"
	"lookbook/internal/upload"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the lookbook API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.Store.Path == "" && cfg.Store.Backend != store.BackendMemory {
				return fmt.Errorf("store path is required")
			}
			if cfg.Blobs.Root == "" {
				return fmt.Errorf("blob root is required")
			}

			logger := slog.Default()

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			logger.Info("opening store", "backend", cfg.Store.Backend, "path", cfg.Store.Path)
			docs, err := store.OpenBackend(cfg.Store.Backend, cfg.Store.Path)
			if err != nil {
				return err
			}
			defer docs.Close()

			blobs, err := blobstore.NewLocal(cfg.Blobs.Root, cfg.Blobs.PublicURL)
			if err != nil {
				return err
			}

			orchestrator := upload.NewOrchestrator(docs, blobs, imaging.NewResizer(logger),
				upload.WithPolicy(uploadPolicy(cfg)),
				upload.WithLogger(logger),
			)
			orchestrator.OnTransition(func(t upload.Transition) {
				logger.Debug("upload transition", "upload_id", t.UploadID, "from", t.From, "to", t.To)
			})

			srv := server.New(addr, orchestrator, catalog.New(docs, blobs, logger), blobs, server.Options{
				StoreBackend:        cfg.Store.Backend,
				MaxUploadBytes:      cfg.Upload.MaxRequestBytes,
				MultipartMaxMemory:  cfg.Upload.MultipartMaxMemory,
				CuratorPasswordHash: cfg.Auth.CuratorPasswordHash,
			}, logger)
			return srv.ListenAndServe()
		},
	}
}

func uploadPolicy(cfg *config.Config) upload.Policy {
	return upload.Policy{
		AllowedItemMediaTypes:  cfg.Upload.AllowedItemMediaTypes,
		DescriptionMaxBytes:    cfg.Upload.DescriptionMaxBytes,
		Quality:                cfg.Upload.Quality,
		MaxDimension:           cfg.Upload.MaxDimension,
		Timeout:                cfg.UploadTimeout(),
		PropagationConcurrency: cfg.Upload.PropagationConcurrency,
	}
}

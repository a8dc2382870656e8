package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

var exportFlags struct {
	disk string
	path string
}

// storefront export:products
var exportProductsCmd = &cobra.Command{
	Use:   "export:products",
	Short: "Write the product catalog as CSV to a storage disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		storage.Connect(cmd.Context())
		disk, err := storage.Use(exportFlags.disk)
		if err != nil {
			return err
		}

		path := exportFlags.path
		if path == "" {
			path = "exports/products-" + time.Now().UTC().Format("20060102-150405") + ".csv"
		}

		svc := services.New(database.DB, nil, nil, 0)
		n, err := svc.Products.ExportTo(cmd.Context(), disk, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products to %s\n", n, disk.URL(path))
		return nil
	},
}

func init() {
	f := exportProductsCmd.Flags()
	f.StringVar(&exportFlags.disk, "disk", "", "storage disk: local or s3 (default STORAGE_DISK)")
	f.StringVar(&exportFlags.path, "path", "", "file path on the disk")
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	catalog "github.com/shashiranjanraj/storefront/app/graphql"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// storefront serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// storefront route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := services.New(nil, nil, nil, 0)
		schema, err := catalog.New(svc)
		if err != nil {
			return err
		}
		k := kernel.NewHTTPKernel(kernel.Options{
			Services:  svc,
			Hub:       ws.NewHub(),
			Schema:    &schema,
			RateLimit: -1,
		})

		infos := k.Router().Routes()
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No named routes registered.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

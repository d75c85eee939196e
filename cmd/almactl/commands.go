package main

import (
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/almadegranja/alma-backend/internal/modules/catalog"
	"github.com/almadegranja/alma-backend/internal/modules/storefront"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	server  string
	timeout time.Duration
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "almactl",
		Short:        "Inspect the Alma de Granja catalog",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:8080", "base URL of the API server")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log fetch failures to stderr")

	root.AddCommand(newProductsCmd(opts), newFeaturedCmd(opts), newCartCmd(opts))
	return root
}

// productsCmd lists the catalog, optionally filtered by category
func newProductsCmd(opts *rootOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Long: `List every product in the catalog.

Categories: todos, quesos, frutos_secos, huevos_campo, otros.
"otros" lists everything outside the three named categories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.sync(cmd)
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), storefront.FilterByCategory(st.Products, category))
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", storefront.CategoryAll, "category to show")
	return cmd
}

func newFeaturedCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "featured",
		Short: "List featured products",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.sync(cmd)
			if err != nil {
				return err
			}
			if !st.FeaturedFromServer {
				fmt.Fprintln(cmd.ErrOrStderr(), "featured endpoint unavailable, filtered locally")
			}
			printProducts(cmd.OutOrStdout(), st.FeaturedView(limit))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n products (0 shows all)")
	return cmd
}

// cartCmd prices a list of product ids, one unit per occurrence
func newCartCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cart ID...",
		Short: "Price a cart of product ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.sync(cmd)
			if err != nil {
				return err
			}
			byID := make(map[string]catalog.Product, len(st.Products))
			for _, p := range st.Products {
				byID[p.ID] = p
			}
			cart := storefront.NewCart()
			for _, id := range args {
				p, ok := byID[id]
				if !ok {
					return fmt.Errorf("unknown product %q", id)
				}
				cart.Add(p)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tQTY\tSUBTOTAL")
			for _, item := range cart.Items() {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", item.ID, item.Title, item.Quantity, formatPrice(item.Subtotal()))
			}
			fmt.Fprintf(w, "\t\t%d\t%s\n", cart.TotalItems(), formatPrice(cart.Total()))
			return w.Flush()
		},
	}
}

func (o *rootOptions) sync(cmd *cobra.Command) (storefront.State, error) {
	if o.server == "" {
		return storefront.State{}, fmt.Errorf("--server is required")
	}
	log := zap.NewNop()
	if o.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return storefront.State{}, err
		}
		log = l
	}
	client := storefront.NewClient(o.server, &http.Client{Timeout: o.timeout})
	return storefront.Sync(cmd.Context(), client, log), nil
}

func printProducts(out io.Writer, products []catalog.Product) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tTITLE\tUNIT\tPRICE\tFEATURED")
	for _, p := range products {
		featured := ""
		if p.IsFeatured {
			featured = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Category, p.Title, p.Unit, formatPrice(p.Price), featured)
	}
	w.Flush()
}

func formatPrice(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}

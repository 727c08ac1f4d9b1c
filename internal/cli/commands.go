// Package cli provides the Cobra-based CLI for shopctl.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MYS158/shop-project/internal/catalog"
	"github.com/MYS158/shop-project/internal/csvio"
	"github.com/MYS158/shop-project/internal/logging"
	"github.com/MYS158/shop-project/internal/store"
)

var (
	rootCmd = &cobra.Command{
		Use:   "shopctl",
		Short: "Manage the product catalog from the command line",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// IMPORTANT: allow tests to inject a service
			if service != nil {
				return nil
			}

			logging.Setup(viper.GetString("log-level"), "text")

			repo, closer, err := store.New(
				context.Background(),
				viper.GetString("store"),
				viper.GetString("database-url"),
			)
			if err != nil {
				return err
			}
			closeStore = closer
			service = catalog.NewService(repo, csvio.Transfer{})
			return nil
		},
	}

	service    *catalog.Service
	closeStore func()
)

func init() {
	rootCmd.PersistentFlags().String("store", "memory", "store backend: postgres|memory")
	rootCmd.PersistentFlags().String("database-url", "", "postgres connection string")
	rootCmd.PersistentFlags().String("log-level", "info", "log level")

	viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("database-url", rootCmd.PersistentFlags().Lookup("database-url"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.SetEnvPrefix("SHOP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// add
	var a productFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.toProduct()
			if err != nil {
				return err
			}
			start := time.Now()
			created, err := service.Add(context.Background(), p)
			if err != nil {
				slog.Error("add failed", "product_id", p.ID, "error", err)
				return userErr(err)
			}
			slog.Info("product added", "product_id", created.ID, "duration_ms", time.Since(start).Milliseconds())
			printJSON(created)
			return nil
		},
	}
	a.register(addCmd)
	rootCmd.AddCommand(addCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a product by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			p, err := service.Find(context.Background(), id)
			if err != nil {
				return userErr(err)
			}
			if p == nil {
				fmt.Fprintf(os.Stderr, "product %d not found\n", id)
				return nil
			}
			printJSON(p)
			return nil
		},
	}
	rootCmd.AddCommand(getCmd)

	// update
	var u productFlags
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			existing, err := service.Find(context.Background(), id)
			if err != nil {
				return userErr(err)
			}
			if existing == nil {
				return fmt.Errorf("product %d not found", id)
			}

			p, err := u.apply(cmd, *existing)
			if err != nil {
				return err
			}

			start := time.Now()
			updated, err := service.Update(context.Background(), p)
			if err != nil {
				slog.Error("update failed", "product_id", id, "error", err)
				return userErr(err)
			}
			if !updated {
				return fmt.Errorf("product %d not found", id)
			}
			slog.Info("product updated", "product_id", id, "duration_ms", time.Since(start).Milliseconds())
			printJSON(p)
			return nil
		},
	}
	u.register(updateCmd)
	rootCmd.AddCommand(updateCmd)

	// delete
	var force bool
	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			if !force {
				fmt.Printf("Delete %d? (y/N): ", id)
				var resp string
				if _, err := fmt.Scanln(&resp); err != nil || (resp != "y" && resp != "Y") {
					fmt.Println("aborted")
					return nil
				}
			}
			deleted, err := service.Delete(context.Background(), id)
			if err != nil {
				return userErr(err)
			}
			if !deleted {
				fmt.Fprintf(os.Stderr, "product %d not found\n", id)
				return nil
			}
			fmt.Println("deleted")
			return nil
		},
	}
	deleteCmd.Flags().BoolVar(&force, "force", false, "skip confirmation")
	rootCmd.AddCommand(deleteCmd)

	// list
	var lOutput string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all products",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := service.List(context.Background())
			if err != nil {
				return userErr(err)
			}
			printProducts(out, lOutput)
			return nil
		},
	}
	listCmd.Flags().StringVar(&lOutput, "output", "", "output format: json|table")
	rootCmd.AddCommand(listCmd)

	// search
	var sScope, sOutput string
	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search products",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			out, err := service.Search(context.Background(), query, catalog.ParseScope(sScope))
			if err != nil {
				return userErr(err)
			}
			printProducts(out, sOutput)
			return nil
		},
	}
	searchCmd.Flags().StringVar(&sScope, "scope", "all", "search scope: all|description|brand|category|id")
	searchCmd.Flags().StringVar(&sOutput, "output", "", "output format: json|table")
	rootCmd.AddCommand(searchCmd)

	// import
	var importFile string
	importCmd := &cobra.Command{
		Use:   "import --file <file>",
		Short: "Import products from CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if importFile == "" {
				return fmt.Errorf("--file required")
			}
			f, err := os.Open(importFile)
			if err != nil {
				return err
			}
			defer f.Close()

			report, err := service.Import(context.Background(), csvio.NewScanner(f))
			if err != nil {
				return userErr(err)
			}
			printJSON(report)
			return nil
		},
	}
	importCmd.Flags().StringVar(&importFile, "file", "", "input CSV file")
	rootCmd.AddCommand(importCmd)

	// export
	var exportFile string
	exportCmd := &cobra.Command{
		Use:   "export --file <file>",
		Short: "Export products to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if exportFile == "" {
				return fmt.Errorf("--file required")
			}
			f, err := os.Create(exportFile)
			if err != nil {
				return err
			}
			defer f.Close()

			count, err := service.Export(context.Background(), f)
			if err != nil {
				return userErr(err)
			}
			fmt.Printf("exported %d products\n", count)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&exportFile, "file", "", "output CSV file")
	rootCmd.AddCommand(exportCmd)

	// stats
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := service.Stats(context.Background())
			if err != nil {
				return userErr(err)
			}
			printJSON(stats)
			return nil
		},
	}
	rootCmd.AddCommand(statsCmd)
}

// productFlags holds the field flags shared by add and update.
type productFlags struct {
	id          int
	description string
	brand       string
	content     string
	category    string
	price       float64
	status      string
	dateMade    string
	expiration  string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.id, "id", 0, "product id (1-9999)")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.brand, "brand", "", "brand")
	cmd.Flags().StringVar(&f.content, "content", "", "content, e.g. 500g")
	cmd.Flags().StringVar(&f.category, "category", "", "category")
	cmd.Flags().Float64Var(&f.price, "price", 0, "price")
	cmd.Flags().StringVar(&f.status, "status", catalog.StatusActive, "Active or Inactive")
	cmd.Flags().StringVar(&f.dateMade, "date-made", "", "date made (dd/mm/yyyy)")
	cmd.Flags().StringVar(&f.expiration, "expiration", "", "expiration date (dd/mm/yyyy)")
}

func (f *productFlags) toProduct() (catalog.Product, error) {
	p := catalog.Product{
		ID:          f.id,
		Description: f.description,
		Brand:       f.brand,
		Content:     f.content,
		Category:    f.category,
		Price:       f.price,
	}

	active, ok := catalog.ParseStatus(f.status)
	if !ok {
		return p, fmt.Errorf("invalid status %q (use Active or Inactive)", f.status)
	}
	p.Active = active

	if f.dateMade != "" {
		made, err := time.Parse(csvio.DateLayout, f.dateMade)
		if err != nil {
			return p, fmt.Errorf("invalid date-made %q (use dd/mm/yyyy)", f.dateMade)
		}
		p.DateMade = made
	}
	if f.expiration != "" {
		exp, err := time.Parse(csvio.DateLayout, f.expiration)
		if err != nil {
			return p, fmt.Errorf("invalid expiration %q (use dd/mm/yyyy)", f.expiration)
		}
		p.ExpirationDate = &exp
	}
	return p, nil
}

// apply overlays only the flags the user set onto an existing record.
func (f *productFlags) apply(cmd *cobra.Command, p catalog.Product) (catalog.Product, error) {
	if cmd.Flags().Changed("description") {
		p.Description = f.description
	}
	if cmd.Flags().Changed("brand") {
		p.Brand = f.brand
	}
	if cmd.Flags().Changed("content") {
		p.Content = f.content
	}
	if cmd.Flags().Changed("category") {
		p.Category = f.category
	}
	if cmd.Flags().Changed("price") {
		p.Price = f.price
	}
	if cmd.Flags().Changed("status") {
		active, ok := catalog.ParseStatus(f.status)
		if !ok {
			return p, fmt.Errorf("invalid status %q (use Active or Inactive)", f.status)
		}
		p.Active = active
	}
	if cmd.Flags().Changed("date-made") {
		made, err := time.Parse(csvio.DateLayout, f.dateMade)
		if err != nil {
			return p, fmt.Errorf("invalid date-made %q (use dd/mm/yyyy)", f.dateMade)
		}
		p.DateMade = made
	}
	if cmd.Flags().Changed("expiration") {
		if f.expiration == "" {
			p.ExpirationDate = nil
		} else {
			exp, err := time.Parse(csvio.DateLayout, f.expiration)
			if err != nil {
				return p, fmt.Errorf("invalid expiration %q (use dd/mm/yyyy)", f.expiration)
			}
			p.ExpirationDate = &exp
		}
	}
	return p, nil
}

// userErr rewraps service errors as the short user-facing message so
// the CLI prints something actionable instead of storage detail.
func userErr(err error) error {
	msg := catalog.MapError(err)
	if len(msg.Violations) > 0 {
		return fmt.Errorf("%s:\n  %s", msg.Message, strings.Join(msg.Violations, "\n  "))
	}
	if msg.Action != "" {
		return fmt.Errorf("%s. %s [%s]", msg.Message, msg.Action, msg.Code)
	}
	return fmt.Errorf("%s [%s]", msg.Message, msg.Code)
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func printProducts(out []catalog.Product, format string) {
	if format == "json" {
		printJSON(out)
		return
	}
	for _, p := range out {
		fmt.Printf("%4d | %-30s | %-15s | %8.2f | %-21s | %s\n",
			p.ID, p.Description, p.Brand, p.Price, p.Category, p.Status())
	}
}

// Execute runs the root command and releases the store afterwards.
func Execute() error {
	err := rootCmd.Execute()
	if closeStore != nil {
		closeStore()
	}
	return err
}

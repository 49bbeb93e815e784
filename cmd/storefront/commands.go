package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/shipping"
	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func resolver(v *viper.Viper) (*shipping.Resolver, error) {
	if path := v.GetString("SHIPPING_CONFIG"); path != "" {
		return shipping.LoadFile(path)
	}
	return shipping.Default(), nil
}

func quoteCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote <country> <subtotal>",
		Short: "List the shipping options for a destination and cart subtotal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolver(v)
			if err != nil {
				return err
			}
			code, err := r.CountryCode(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			sub, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("subtotal %q: %w", args[1], err)
			}
			opts := r.Resolve(code, sub)

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), opts)
			}
			return writeOptions(cmd.OutOrStdout(), code, opts)
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	return cmd
}

func countriesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the destinations we ship to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolver(v)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tREGION")
			for _, code := range r.Countries() {
				fmt.Fprintf(w, "%s\t%s\n", code, r.RegionOf(code))
			}
			return w.Flush()
		},
	}
}

// summaryCmd prices a cart given as unit:quantity pairs.
func summaryCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "summary <unit:qty>...",
		Short:   "Compute the order summary for cart lines",
		Example: "  storefront summary 20.00:2 --country France --method colissimo",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolver(v)
			if err != nil {
				return err
			}
			taxRate, err := money.Parse(v.GetString("TAX_RATE"))
			if err != nil {
				return fmt.Errorf("tax rate: %w", err)
			}
			lines, err := parseLines(args)
			if err != nil {
				return err
			}

			country, _ := cmd.Flags().GetString("country")
			method, _ := cmd.Flags().GetString("method")
			code, err := r.CountryCode(country)
			if err != nil {
				return fmt.Errorf("%s: %w", country, err)
			}

			sub := domain.ComputeSummary(lines, decimal.Zero, decimal.Zero).Subtotal
			ship := decimal.Zero
			atDestination := false
			if method != "" {
				opt, ok := r.Select(code, sub, method)
				if !ok {
					return fmt.Errorf("shipping method %q is not offered for %s", method, code)
				}
				ship = opt.Cost()
				atDestination = opt.AtDestination()
			}
			s := domain.ComputeSummary(lines, ship, taxRate)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "subtotal  %s\n", s.Subtotal.StringFixed(money.Places))
			if atDestination {
				fmt.Fprintln(out, "shipping  calculated at destination")
			} else {
				fmt.Fprintf(out, "shipping  %s\n", s.Shipping.StringFixed(money.Places))
			}
			fmt.Fprintf(out, "tax       %s\n", s.Tax.StringFixed(money.Places))
			fmt.Fprintf(out, "total     %s\n", s.Total.StringFixed(money.Places))
			return nil
		},
	}
	cmd.Flags().String("country", "France", "Destination country")
	cmd.Flags().String("method", "", "Shipping method id")
	return cmd
}

func parseLines(args []string) ([]domain.Line, error) {
	lines := make([]domain.Line, 0, len(args))
	for i, arg := range args {
		unit, qty, ok := strings.Cut(arg, ":")
		if !ok {
			qty = "1"
		}
		price, err := decimal.NewFromString(unit)
		if err != nil {
			return nil, fmt.Errorf("line %d: price %q: %w", i+1, unit, err)
		}
		n, err := strconv.Atoi(qty)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("line %d: quantity %q", i+1, qty)
		}
		lines = append(lines, domain.Line{ProductID: fmt.Sprintf("line-%d", i+1), Quantity: n, UnitPrice: price})
	}
	return lines, nil
}

func writeOptions(out io.Writer, code string, opts []shipping.Option) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tPRICE\tTRANSIT\t(%s)\n", code)
	for _, o := range opts {
		price := "at destination"
		if o.Price != nil {
			price = o.Price.StringFixed(money.Places)
			if o.Free() {
				price += " (free)"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d-%d days\t\n", o.ID, o.Name, price, o.Transit.MinDays, o.Transit.MaxDays)
	}
	return w.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

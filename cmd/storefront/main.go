package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Version = "dev"

func main() {
	v := viper.New()
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:     "storefront",
		Short:   "Inspect shipping rules and order totals offline",
		Version: Version,
	}
	rootCmd.PersistentFlags().String("shipping-config", "", "Shipping rules YAML (env SHIPPING_CONFIG)")
	rootCmd.PersistentFlags().String("tax-rate", "0", "Tax rate applied to subtotal plus shipping (env TAX_RATE)")
	_ = v.BindPFlag("SHIPPING_CONFIG", rootCmd.PersistentFlags().Lookup("shipping-config"))
	_ = v.BindPFlag("TAX_RATE", rootCmd.PersistentFlags().Lookup("tax-rate"))

	shippingCmd := &cobra.Command{Use: "shipping", Short: "Shipping rules"}
	shippingCmd.AddCommand(quoteCmd(v))

	rootCmd.AddCommand(shippingCmd)
	rootCmd.AddCommand(countriesCmd(v))
	rootCmd.AddCommand(summaryCmd(v))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

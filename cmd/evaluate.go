package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"deal-checker/internal/dto"
	"deal-checker/internal/service"
	"deal-checker/pkg/utils"
)

var evaluateFlags struct {
	file        string
	vin         string
	zip         string
	seller      string
	description string
	adFile      string
	price       float64
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score one listing and print the result as JSON",
	Long: "Scores one listing. With --file the assessment is read from that file, " +
		"otherwise the producer is asked for one.",
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.StringVar(&evaluateFlags.file, "file", "", "producer assessment file (JSON, fences and prose tolerated)")
	f.StringVar(&evaluateFlags.vin, "vin", "", "vehicle identification number")
	f.StringVar(&evaluateFlags.zip, "zip", "", "ZIP code or state of the listing")
	f.StringVar(&evaluateFlags.seller, "seller", "", "seller type: private or dealer")
	f.StringVar(&evaluateFlags.description, "description", "", "ad text")
	f.StringVar(&evaluateFlags.adFile, "ad-file", "", "read the ad text from a file")
	f.Float64Var(&evaluateFlags.price, "price", 0, "asking price in USD")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listing := dto.Listing{
		Description: evaluateFlags.description,
		VIN:         evaluateFlags.vin,
		Location:    evaluateFlags.zip,
		SellerType:  evaluateFlags.seller,
		PriceUSD:    evaluateFlags.price,
	}
	if evaluateFlags.adFile != "" {
		b, err := os.ReadFile(evaluateFlags.adFile)
		if err != nil {
			return fmt.Errorf("failed to read ad file: %w", err)
		}
		listing.Description = string(b)
	}
	listing.Description = utils.SafeText(listing.Description)
	if listing.Description == "" && listing.VIN == "" {
		return fmt.Errorf("either --description, --ad-file or --vin is required")
	}

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return fmt.Errorf("failed to create app dependency: %w", err)
	}
	defer appDep.Close()

	if err := appDep.validator.Struct(listing); err != nil {
		return fmt.Errorf("invalid listing: %w", err)
	}

	var res *service.DealResult
	if evaluateFlags.file != "" {
		b, err := os.ReadFile(evaluateFlags.file)
		if err != nil {
			return fmt.Errorf("failed to read assessment file: %w", err)
		}
		res, err = appDep.services.DealService.Evaluate(ctx, listing, string(b))
		if err != nil {
			return err
		}
	} else {
		res, err = appDep.services.DealService.Analyze(ctx, listing)
		if err != nil {
			return err
		}
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

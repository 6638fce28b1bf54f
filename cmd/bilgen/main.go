package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/audity/internal/billing"
	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/integrity"
)

// itemList collects repeated -item "name=price" flags.
type itemList []billing.Item

func (l *itemList) String() string {
	parts := make([]string, 0, len(*l))
	for _, it := range *l {
		parts = append(parts, it.Name+"="+it.Price.String())
	}
	return strings.Join(parts, ",")
}

func (l *itemList) Set(v string) error {
	name, price, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("item %q must be name=price", v)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return fmt.Errorf("item %q: invalid price: %w", v, err)
	}
	*l = append(*l, billing.Item{Name: strings.TrimSpace(name), Price: d})
	return nil
}

func main() {
	var items itemList
	var (
		envFile  = flag.String("env", ".env", "dotenv file to preload (missing file is ignored)")
		company  = flag.String("company", "", "company name (required)")
		pan      = flag.String("pan", "", "PAN number, format ABCDE1234F (required)")
		outDir   = flag.String("out", ".", "directory for the bill PDF")
		ledger   = flag.String("ledger", "billing_records.csv", "billing ledger CSV to append to")
		withHash = flag.Bool("hash", true, "record the PDF's SHA-256 in the ledger")
	)
	flag.Var(&items, "item", "product or service as name=price (repeatable)")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: loading %s: %v\n", *envFile, err)
		os.Exit(2)
	}
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	bill, err := billing.NewBill(*company, *pan, items, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	doc, err := bill.PDF()
	if err != nil {
		logger.Error("failed to render bill", "unique_id", bill.UniqueID, "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("failed to create output dir", "path", *outDir, "error", err)
		os.Exit(1)
	}
	pdfPath := filepath.Join(*outDir, "bill_"+bill.UniqueID+".pdf")
	if err := os.WriteFile(pdfPath, doc, 0o644); err != nil {
		logger.Error("failed to write bill", "path", pdfPath, "error", err)
		os.Exit(1)
	}

	var hash string
	if *withHash {
		if hash, err = integrity.Digest(bytes.NewReader(doc), cfg.Audit.HashChunkSize); err != nil {
			logger.Error("failed to hash bill", "error", err)
			os.Exit(1)
		}
	}
	if err := billing.AppendLedgerRow(*ledger, bill, hash); err != nil {
		logger.Error("failed to append ledger row", "path", *ledger, "error", err)
		os.Exit(1)
	}
	logger.Info("bill issued", "unique_id", bill.UniqueID, "total", bill.Total.StringFixed(2), "pdf", pdfPath, "ledger", *ledger)

	fmt.Printf("Bill generated successfully!\n")
	fmt.Printf("- Unique ID: %s\n", bill.UniqueID)
	fmt.Printf("- Total: %s\n", bill.Total.StringFixed(2))
	fmt.Printf("- PDF: %s\n", pdfPath)
	fmt.Printf("- Ledger: %s\n", *ledger)
}

package dataflows

import (
	"context"
	"fmt"
	"strings"
)

// RegimeClient composes the macro/capital-flow signals the china-market-regime
// analyst role draws on (SUPPLEMENTED FEATURES: manufacturing PMI,
// northbound Stock Connect flows, and the CCTV evening-news economic
// digest, none of which attach to a single ticker the way the other
// analyst roles' tools do).
type RegimeClient struct {
	tushare *TushareClient
	akshare *AKShareClient
}

// NewRegimeClient composes already-constructed Tushare/AKShare clients;
// it owns no transport or cache of its own.
func NewRegimeClient(tushare *TushareClient, akshare *AKShareClient) *RegimeClient {
	return &RegimeClient{tushare: tushare, akshare: akshare}
}

// Snapshot renders a single Markdown report covering the latest PMI
// reading, the day's northbound top-10 holdings, and the CCTV digest,
// so the regime analyst's tool call returns one coherent macro picture
// rather than three separate calls.
func (r *RegimeClient) Snapshot(ctx context.Context, month, tradeDate, cctvDate string) string {
	var b strings.Builder
	b.WriteString("# China Market Regime Snapshot\n\n")

	b.WriteString("## Manufacturing PMI\n\n")
	pmi, err := r.tushare.PMI(ctx, month)
	if err != nil {
		fmt.Fprintf(&b, "data not available: %v\n\n", err)
	} else {
		b.WriteString("| Month | PMI |\n|---|---|\n")
		for _, row := range pmi {
			fmt.Fprintf(&b, "| %v | %v |\n", row["month"], row["pmi010000"])
		}
		b.WriteString("\n")
	}

	b.WriteString("## Northbound (Stock Connect) Top 10 Holdings\n\n")
	hsgt, err := r.tushare.HSGTTop10(ctx, tradeDate)
	if err != nil {
		fmt.Fprintf(&b, "data not available: %v\n\n", err)
	} else {
		b.WriteString("| Rank | Code | Name | Close | Change | Net Amount |\n|---|---|---|---|---|---|\n")
		for _, row := range hsgt {
			fmt.Fprintf(&b, "| %v | %v | %v | %v | %v | %v |\n",
				row["rank"], row["ts_code"], row["name"], row["close"], row["change"], row["net_amount"])
		}
		b.WriteString("\n")
	}

	b.WriteString("## CCTV Evening News Economic Digest\n\n")
	cctv, err := r.akshare.CCTVNews(ctx, cctvDate)
	if err != nil {
		fmt.Fprintf(&b, "data not available: %v\n\n", err)
	} else {
		for _, d := range cctv {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", d.Title, d.Date, d.Content)
		}
	}

	return b.String()
}

package dataflows

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/marketsage/ashare-agents/internal/models"
)

func decimalFromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// IndicatorPoint is one indicator value on one trading date.
type IndicatorPoint struct {
	Date  string
	Value float64
}

// indicatorDoc pairs a human-readable formula with usage guidance, so
// the market analyst's tool responses carry the formula text for the
// LLM to cite directly rather than recomputing it.
type indicatorDoc struct {
	Formula string
	Usage   string
}

var indicatorDocs = map[string]indicatorDoc{
	"close_10_ema": {
		Formula: "EMA_t = close_t * k + EMA_{t-1} * (1-k), k = 2/(10+1)",
		Usage:   "Short-horizon trend; reacts faster to recent closes than an SMA of the same length.",
	},
	"close_50_sma": {
		Formula: "SMA_50 = mean(close_{t-49..t})",
		Usage:   "Medium-term trend baseline; price crossing above/below signals a trend change.",
	},
	"close_200_sma": {
		Formula: "SMA_200 = mean(close_{t-199..t})",
		Usage:   "Long-term trend baseline, the classic bull/bear market dividing line.",
	},
	"RSI(14)": {
		Formula: "RSI = 100 - 100/(1+RS), RS = avg_gain_14 / avg_loss_14 (Wilder smoothing)",
		Usage:   ">70 overbought, <30 oversold; divergence from price often precedes reversal.",
	},
	"MACD": {
		Formula: "MACD = EMA_12(close) - EMA_26(close)",
		Usage:   "Trend-momentum oscillator; sign change marks a potential trend shift.",
	},
	"MACD Signal": {
		Formula: "Signal = EMA_9(MACD)",
		Usage:   "MACD crossing above/below its signal line is the standard entry/exit trigger.",
	},
	"MACD Histogram": {
		Formula: "Histogram = MACD - Signal",
		Usage:   "Expanding histogram confirms momentum; contracting histogram warns of exhaustion.",
	},
	"Bollinger Mid": {
		Formula: "Middle band = SMA_20(close)",
		Usage:   "Volatility baseline for the Bollinger channel.",
	},
	"Bollinger Upper": {
		Formula: "Upper band = SMA_20 + 2*stddev_20(close)",
		Usage:   "Price touching the upper band in a strong trend signals continuation, not reversal.",
	},
	"Bollinger Lower": {
		Formula: "Lower band = SMA_20 - 2*stddev_20(close)",
		Usage:   "Price touching the lower band in a range-bound market signals a bounce candidate.",
	},
	"ATR(14)": {
		Formula: "ATR_14 = Wilder-smoothed average of True Range = max(high-low, |high-prevclose|, |low-prevclose|)",
		Usage:   "Volatility measure used to size stop-loss distance.",
	},
	"MFI(14)": {
		Formula: "MFI = 100 - 100/(1+MFR), MFR = 14-day positive money flow / negative money flow, money flow = typical price * volume",
		Usage:   "Volume-weighted RSI; divergence from price with high/low MFI is a stronger signal than RSI alone.",
	},
}

func closes(bars []*models.MarketBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		f, _ := b.Close.Float64()
		out[i] = f
	}
	return out
}

func sortBars(bars []*models.MarketBar) []*models.MarketBar {
	sorted := make([]*models.MarketBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })
	return sorted
}

// SMA computes a simple moving average of period length over bars.
func SMA(bars []*models.MarketBar, period int) []IndicatorPoint {
	bars = sortBars(bars)
	c := closes(bars)
	var out []IndicatorPoint
	for i := period - 1; i < len(c); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += c[j]
		}
		out = append(out, IndicatorPoint{Date: bars[i].Date, Value: sum / float64(period)})
	}
	return out
}

// EMA computes an exponential moving average of period length.
func EMA(bars []*models.MarketBar, period int) []IndicatorPoint {
	bars = sortBars(bars)
	c := closes(bars)
	if len(c) < period {
		return nil
	}
	k := 2.0 / (float64(period) + 1.0)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += c[i]
	}
	ema := sum / float64(period)
	out := []IndicatorPoint{{Date: bars[period-1].Date, Value: ema}}
	for i := period; i < len(c); i++ {
		ema = c[i]*k + ema*(1-k)
		out = append(out, IndicatorPoint{Date: bars[i].Date, Value: ema})
	}
	return out
}

// RSI computes the 14-period relative strength index by default.
func RSI(bars []*models.MarketBar, period int) []IndicatorPoint {
	bars = sortBars(bars)
	c := closes(bars)
	if len(c) < period+1 {
		return nil
	}
	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		change := c[i] - c[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum += -change
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	var out []IndicatorPoint
	for i := period; i < len(c); i++ {
		change := c[i] - c[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)

		rsi := 100.0
		if avgLoss != 0 {
			rs := avgGain / avgLoss
			rsi = 100 - 100/(1+rs)
		}
		out = append(out, IndicatorPoint{Date: bars[i].Date, Value: rsi})
	}
	return out
}

// MACD returns the MACD line, its 9-period signal line, and their
// histogram, each aligned by date.
func MACD(bars []*models.MarketBar) (line, signal, histogram []IndicatorPoint) {
	ema12 := EMA(bars, 12)
	ema26 := EMA(bars, 26)
	offset := len(ema12) - len(ema26)
	if offset < 0 {
		return nil, nil, nil
	}
	for i, e26 := range ema26 {
		line = append(line, IndicatorPoint{Date: e26.Date, Value: ema12[i+offset].Value - e26.Value})
	}
	if len(line) < 9 {
		return line, nil, nil
	}
	// EMA-of-MACD for the signal line, reusing EMA over a synthetic bar series.
	synthetic := make([]*models.MarketBar, len(line))
	for i, p := range line {
		synthetic[i] = &models.MarketBar{Date: p.Date}
		synthetic[i].Close = decimalFromFloat(p.Value)
	}
	signal = EMA(synthetic, 9)
	sigOffset := len(line) - len(signal)
	for i, s := range signal {
		histogram = append(histogram, IndicatorPoint{Date: s.Date, Value: line[i+sigOffset].Value - s.Value})
	}
	return line, signal, histogram
}

// BollingerBands returns the middle/upper/lower bands for a 20-period,
// 2-stddev channel.
func BollingerBands(bars []*models.MarketBar) (middle, upper, lower []IndicatorPoint) {
	const period = 20
	bars = sortBars(bars)
	c := closes(bars)
	for i := period - 1; i < len(c); i++ {
		window := c[i-period+1 : i+1]
		mean := 0.0
		for _, v := range window {
			mean += v
		}
		mean /= period
		variance := 0.0
		for _, v := range window {
			variance += (v - mean) * (v - mean)
		}
		stddev := math.Sqrt(variance / period)

		middle = append(middle, IndicatorPoint{Date: bars[i].Date, Value: mean})
		upper = append(upper, IndicatorPoint{Date: bars[i].Date, Value: mean + 2*stddev})
		lower = append(lower, IndicatorPoint{Date: bars[i].Date, Value: mean - 2*stddev})
	}
	return middle, upper, lower
}

// ATR computes the 14-period Wilder-smoothed average true range.
func ATR(bars []*models.MarketBar, period int) []IndicatorPoint {
	bars = sortBars(bars)
	if len(bars) < period+1 {
		return nil
	}
	trueRange := func(i int) float64 {
		high, _ := bars[i].High.Float64()
		low, _ := bars[i].Low.Float64()
		prevClose, _ := bars[i-1].Close.Float64()
		return math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
	}
	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += trueRange(i)
	}
	atr := sum / float64(period)
	out := []IndicatorPoint{{Date: bars[period].Date, Value: atr}}
	for i := period + 1; i < len(bars); i++ {
		atr = (atr*float64(period-1) + trueRange(i)) / float64(period)
		out = append(out, IndicatorPoint{Date: bars[i].Date, Value: atr})
	}
	return out
}

// MFI computes the 14-period money flow index.
func MFI(bars []*models.MarketBar, period int) []IndicatorPoint {
	bars = sortBars(bars)
	if len(bars) < period+1 {
		return nil
	}
	typicalPrice := func(i int) float64 {
		high, _ := bars[i].High.Float64()
		low, _ := bars[i].Low.Float64()
		closeV, _ := bars[i].Close.Float64()
		return (high + low + closeV) / 3
	}

	var out []IndicatorPoint
	for i := period; i < len(bars); i++ {
		var posFlow, negFlow float64
		for j := i - period + 1; j <= i; j++ {
			if j == 0 {
				continue
			}
			tp, prevTP := typicalPrice(j), typicalPrice(j-1)
			flow := tp * float64(bars[j].Volume)
			if tp > prevTP {
				posFlow += flow
			} else if tp < prevTP {
				negFlow += flow
			}
		}
		mfi := 100.0
		if negFlow != 0 {
			ratio := posFlow / negFlow
			mfi = 100 - 100/(1+ratio)
		}
		out = append(out, IndicatorPoint{Date: bars[i].Date, Value: mfi})
	}
	return out
}

// RenderMarkdown formats an indicator series as a Markdown table
// preceded by its formula and usage note.
func RenderMarkdown(name string, points []IndicatorPoint) string {
	var b strings.Builder
	if doc, ok := indicatorDocs[name]; ok {
		fmt.Fprintf(&b, "**%s**\n\nFormula: `%s`\n\nUsage: %s\n\n", name, doc.Formula, doc.Usage)
	} else {
		fmt.Fprintf(&b, "**%s**\n\n", name)
	}
	if len(points) == 0 {
		b.WriteString("data not available\n")
		return b.String()
	}
	b.WriteString("| Date | Value |\n|---|---|\n")
	tail := points
	if len(tail) > 30 {
		tail = tail[len(tail)-30:]
	}
	for _, p := range tail {
		fmt.Fprintf(&b, "| %s | %.4f |\n", p.Date, p.Value)
	}
	return b.String()
}

package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/seenimoa/openstress/pkg/models"
)

// ExportCSV writes stress_detail.csv and stress_agg.csv into dir and returns
// their paths.
func ExportCSV(dir string, res models.StressResult) (detailPath, aggPath string, err error) {
	detailPath = filepath.Join(dir, DetailCSVFile)
	if err = writeFile(detailPath, func(f *os.File) error { return WriteDetailCSV(f, res.Detail) }); err != nil {
		return "", "", err
	}
	aggPath = filepath.Join(dir, AggregateCSVFile)
	if err = writeFile(aggPath, func(f *os.File) error { return WriteAggregateCSV(f, res.Aggregate) }); err != nil {
		return detailPath, "", err
	}
	return detailPath, aggPath, nil
}

// WriteDetailCSV writes the detail table at full precision.
func WriteDetailCSV(w io.Writer, rows []models.DetailRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(detailHeader); err != nil {
		return err
	}
	for _, d := range rows {
		rec := []string{
			d.Asset,
			d.Bucket,
			num(d.MV),
			num(d.PnLRates),
			num(d.PnLSpread),
			num(d.PnL),
			num(d.DV01),
			num(d.CS01),
			num(d.DyBP),
			num(d.DsBP),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAggregateCSV writes the aggregate table. A nil pnl_pct is left blank.
func WriteAggregateCSV(w io.Writer, rows []models.AggregateRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(aggregateHeader); err != nil {
		return err
	}
	for _, a := range rows {
		pct := ""
		if a.PnLPct != nil {
			pct = num(*a.PnLPct)
		}
		rec := []string{
			a.Bucket,
			num(a.MV),
			num(a.PnL),
			num(a.PnLRates),
			num(a.PnLSpread),
			num(a.DV01),
			num(a.CS01),
			pct,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// num formats at full precision; -0 is written as 0.
func num(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

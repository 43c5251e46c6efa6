package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/lox/hyplot/internal/models"
	"github.com/lox/hyplot/internal/store"
	"github.com/lox/hyplot/internal/windfield"
)

type HistoryCmd struct {
	Catalog   string `type:"existingfile" required:"" env:"HYPLOT_CATALOG" help:"SQLite render catalog."`
	Satellite string `help:"Only show renders for this satellite, e.g. HY-2B."`
	Limit     int    `default:"20" help:"Maximum renders to list."`
	Latest    bool   `help:"Only show the render with the newest valid time for --satellite."`
}

func (c *HistoryCmd) Validate() error {
	if c.Latest && c.Satellite == "" {
		return errors.New("--latest needs --satellite")
	}
	return nil
}

func (c *HistoryCmd) Run() error {
	st, err := store.Open(c.Catalog)
	if err != nil {
		return err
	}
	defer st.Close()

	renders, err := c.renders(st)
	if err != nil {
		return err
	}
	return printHistory(os.Stdout, renders)
}

func (c *HistoryCmd) renders(st *store.Store) ([]models.RenderRecord, error) {
	if !c.Latest {
		renders, err := st.ListRenders(c.Satellite, c.Limit)
		if err != nil {
			return nil, fmt.Errorf("list renders: %w", err)
		}
		return renders, nil
	}
	latest, err := st.LatestRender(c.Satellite)
	if err != nil {
		return nil, fmt.Errorf("latest render: %w", err)
	}
	if latest == nil {
		return nil, nil
	}
	return []models.RenderRecord{*latest}, nil
}

func printHistory(w io.Writer, renders []models.RenderRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RENDERED\tSATELLITE\tVALID\tBOX\tMAX WIND\tBARBS\tOUTPUT")
	for _, r := range renders {
		peak := windfield.MaxWind{Value: r.MaxWind.Float64, Valid: r.MaxWind.Valid}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%skt\t%d\t%s\n",
			r.RenderedAt.UTC().Format(time.RFC3339),
			r.Satellite,
			r.ValidTime.UTC().Format(windfield.DisplayTimeLayout),
			r.Box,
			peak,
			r.Barbs,
			r.Output,
		)
	}
	return tw.Flush()
}

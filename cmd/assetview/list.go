package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/user/assetview/internal/model"
	"github.com/user/assetview/internal/view"
)

var (
	listPage   int
	listQuery  string
	listFormat string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of assets",
	Long: `Fetch a single page of assets, sorted by host, and print it.

Examples:
  assetview list
  assetview list --page 3
  assetview list --host db --format json`,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "Page to show (1-based)")
	listCmd.Flags().StringVar(&listQuery, "host", "", "Filter by host substring")
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table, json)")
}

func runList(cmd *cobra.Command, args []string) error {
	if listFormat != "table" && listFormat != "json" {
		return fmt.Errorf("unknown format %q", listFormat)
	}

	c := newCoordinator(false)
	defer c.Close()

	s, err := loadPage(c, listPage, listQuery)
	if err != nil {
		return err
	}

	if listFormat == "json" {
		return renderJSON(cmd.OutOrStdout(), s)
	}
	return renderTable(cmd.OutOrStdout(), s)
}

// loadPage drives c to the given page of query and waits for it to settle.
func loadPage(c *view.Coordinator, page int, query string) (model.ViewState, error) {
	if query != "" {
		c.SetQuery(query)
	} else {
		c.Start()
	}
	c.Wait()

	s := c.State()
	if s.Err != nil {
		return s, s.Err
	}
	if page == s.CurrentPage {
		return s, nil
	}

	if !c.SetPage(page) {
		return s, fmt.Errorf("page %d out of range (1-%d)", page, s.TotalPages)
	}
	c.Wait()

	s = c.State()
	return s, s.Err
}

type listOutput struct {
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Query      string        `json:"query,omitempty"`
	Assets     []model.Asset `json:"assets"`
}

func renderJSON(w io.Writer, s model.ViewState) error {
	records := s.Records
	if records == nil {
		records = []model.Asset{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(listOutput{
		Page:       s.CurrentPage,
		TotalPages: s.TotalPages,
		Query:      s.Query,
		Assets:     records,
	})
}

func renderTable(w io.Writer, s model.ViewState) error {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))
	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	if len(s.Records) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No data found"))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tHOST\tCOMMENT\tOWNER\tIPS\tPORTS")
	for _, a := range s.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			strconv.Itoa(a.ID), a.Host, a.Comment, a.Owner, a.IPList(), a.PortList())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Page %d of %d", s.CurrentPage, s.TotalPages)))
	return nil
}

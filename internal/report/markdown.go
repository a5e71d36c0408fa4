package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FormatMarkdown renders a report as Markdown.
func FormatMarkdown(data *ReportData) string {
	var sb strings.Builder

	sb.WriteString("# Asset Inventory Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", data.GeneratedAt.Format("2006-01-02 15:04:05"))
	if data.Query != "" {
		fmt.Fprintf(&sb, "Host filter: `%s`\n\n", data.Query)
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Assets | %d |\n", data.TotalAssets)
	fmt.Fprintf(&sb, "| Pages | %d |\n", data.Pages)
	fmt.Fprintf(&sb, "| Owners | %d |\n", len(data.Owners))
	fmt.Fprintf(&sb, "| Distinct ports | %d |\n", len(data.Ports))
	fmt.Fprintf(&sb, "| Without IPs | %d |\n", len(data.WithoutIPs))
	fmt.Fprintf(&sb, "| Without ports | %d |\n\n", len(data.WithoutPorts))

	writeCounts(&sb, "Assets by Owner", "Owner", data.Owners)
	if len(data.Assets) > 0 {
		sb.WriteString("## Ownership\n\n")
		sb.WriteString(GenerateOwnershipDiagram(data))
		sb.WriteString("\n")
	}
	writeCounts(&sb, "Port Usage", "Port", data.Ports)
	if len(data.DuplicateHosts) > 0 {
		writeCounts(&sb, "Duplicate Hosts", "Host", data.DuplicateHosts)
	}

	sb.WriteString("## Assets\n\n")
	if len(data.Assets) == 0 {
		sb.WriteString("_No data found._\n")
		return sb.String()
	}
	sb.WriteString("| ID | Host | Comment | Owner | IPs | Ports |\n|---|---|---|---|---|---|\n")
	for _, a := range data.Assets {
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s | %s |\n",
			a.ID, escapeCell(a.Host), escapeCell(a.Comment), escapeCell(a.Owner), a.IPList(), a.PortList())
	}

	return sb.String()
}

func writeCounts(sb *strings.Builder, title, label string, counts []Count) {
	fmt.Fprintf(sb, "## %s\n\n", title)
	if len(counts) == 0 {
		sb.WriteString("_None._\n\n")
		return
	}
	fmt.Fprintf(sb, "| %s | Assets |\n|---|---|\n", label)
	for _, c := range counts {
		fmt.Fprintf(sb, "| %s | %d |\n", escapeCell(c.Value), c.Count)
	}
	sb.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// WriteMarkdownFile writes the report into dir with a timestamped name and
// returns the path.
func WriteMarkdownFile(data *ReportData, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	name := fmt.Sprintf("assets-%s.md", data.GeneratedAt.Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(FormatMarkdown(data)), 0644); err != nil {
		return "", err
	}
	return path, nil
}

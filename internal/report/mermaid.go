package report

import (
	"fmt"
	"strings"
)

// maxDiagramHosts bounds the ownership diagram so large inventories stay
// readable.
const maxDiagramHosts = 50

// GenerateOwnershipDiagram creates a Mermaid flowchart linking owners to the
// hosts they own.
func GenerateOwnershipDiagram(data *ReportData) string {
	var sb strings.Builder

	sb.WriteString("```mermaid\n")
	sb.WriteString("flowchart LR\n")

	owners := map[string]string{}
	for i, c := range data.Owners {
		id := fmt.Sprintf("O%d", i+1)
		owners[c.Value] = id
		sb.WriteString(fmt.Sprintf("    %s([\"%s\"]):::owner\n", id, c.Value))
	}

	for i, a := range data.Assets {
		if i == maxDiagramHosts {
			sb.WriteString(fmt.Sprintf("    More[... %d more]\n", len(data.Assets)-maxDiagramHosts))
			break
		}
		owner := a.Owner
		if owner == "" {
			owner = "(none)"
		}
		nodeID := fmt.Sprintf("A%d", a.ID)
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeID, shortenHostname(a.Host)))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", owners[owner], nodeID))
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef owner fill:#90EE90\n")
	sb.WriteString("```\n")

	return sb.String()
}

func shortenHostname(hostname string) string {
	if len(hostname) > 20 {
		parts := strings.Split(hostname, ".")
		if len(parts) > 2 {
			return parts[0] + "..."
		}
		return hostname[:17] + "..."
	}
	return hostname
}

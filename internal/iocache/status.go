package iocache

import (
	"fmt"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"
)

// PrintStoreStatus prints findings store status information.
func PrintStoreStatus(status schema.StoreStatus) {
	fmt.Printf("Store Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Schema Version: %d\n", status.SchemaVersion)
	fmt.Printf("Total Findings: %d\n", status.TotalFindings)
	if status.TotalFindings == 0 {
		return
	}
	fmt.Printf("Repositories: %d\n", status.Repositories)
	fmt.Printf("Last Finding ID: %d\n", status.LastID)
	fmt.Printf("Last Created: %s\n", status.LastCreated.Format("2006-01-02 15:04:05"))
	fmt.Printf("Oldest Created: %s\n", status.OldestCreated.Format("2006-01-02 15:04:05"))
	fmt.Println("Triage Status:")
	for _, s := range schema.AllTriageStatuses {
		fmt.Printf("  %s: %d\n", contract.GetPlainTriageLabel(s), status.ByStatus[s])
	}
	fmt.Println("Taxonomy:")
	for _, t := range schema.AllTaxonomies {
		if n := status.ByTaxonomy[t]; n > 0 {
			fmt.Printf("  %s (%s): %d\n", t, t.Description(), n)
		}
	}
}

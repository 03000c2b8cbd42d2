package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sdejongh/foldermirror/pkg/models"
)

// PlanReport describes what a pass would do without applying it
type PlanReport struct {
	Source  string
	Replica string
	Actions []models.Action
}

// WritePlan writes the planned actions to w.
// Format can be "human" or "json".
func WritePlan(w io.Writer, plan PlanReport, format string) error {
	switch format {
	case "json":
		return writePlanJSON(w, plan)
	default:
		return writePlanHuman(w, plan)
	}
}

// writePlanHuman writes the plan grouped by action kind
func writePlanHuman(w io.Writer, plan PlanReport) error {
	fmt.Fprintf(w, "Source:  %s\n", plan.Source)
	fmt.Fprintf(w, "Replica: %s\n\n", plan.Replica)

	if len(plan.Actions) == 0 {
		_, err := fmt.Fprintf(w, "Trees are identical\n")
		return err
	}

	fmt.Fprintf(w, "Planned actions: %d\n\n", len(plan.Actions))

	counts := make(map[models.ActionKind]int)
	for _, a := range plan.Actions {
		counts[a.Kind]++
		fmt.Fprintf(w, "  %-12s %s\n", a.Kind, a.Path)
	}

	fmt.Fprintf(w, "\n")
	for _, kind := range []models.ActionKind{
		models.ActionCreateFile,
		models.ActionUpdateFile,
		models.ActionCreateDir,
		models.ActionDeleteFile,
		models.ActionDeleteDir,
	} {
		if counts[kind] > 0 {
			fmt.Fprintf(w, "  %s: %d\n", kind, counts[kind])
		}
	}
	return nil
}

// writePlanJSON writes the plan as a single JSON document
func writePlanJSON(w io.Writer, plan PlanReport) error {
	type jsonAction struct {
		Kind string `json:"kind"`
		Path string `json:"path"`
	}

	out := struct {
		Generated time.Time    `json:"generated"`
		Source    string       `json:"source"`
		Replica   string       `json:"replica"`
		Identical bool         `json:"identical"`
		Actions   []jsonAction `json:"actions"`
	}{
		Generated: time.Now(),
		Source:    plan.Source,
		Replica:   plan.Replica,
		Identical: len(plan.Actions) == 0,
		Actions:   make([]jsonAction, 0, len(plan.Actions)),
	}
	for _, a := range plan.Actions {
		out.Actions = append(out.Actions, jsonAction{Kind: string(a.Kind), Path: a.Path})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

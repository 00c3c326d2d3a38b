// Package merge builds and executes merge plans: the ordered list of
// (source file, selection expression) pairs that defines the output
// document's assembly.
package merge

import (
	"fmt"
	"path/filepath"

	"github.com/a3tai/mcp-pdf-merger/internal/pdf"
	"github.com/a3tai/mcp-pdf-merger/internal/selection"
)

// Item is one source file with its selection expression
type Item struct {
	Path      string `json:"path"`
	Selection string `json:"selection"`
}

// Plan is an immutable description of one merge: the inputs in output
// order, each with its selection expression, and the output path. The
// shell constructs a fresh Plan per merge invocation; plans are passed
// by value and never mutated by the components that consume them.
type Plan struct {
	Items      []Item `json:"items"`
	OutputPath string `json:"output_path"`
	Overwrite  bool   `json:"overwrite"`
}

// ResolvedItem is an Item whose selection has been evaluated against the
// file's current page count
type ResolvedItem struct {
	Path      string `json:"path"`
	Selection string `json:"selection"`
	PageCount int    `json:"page_count"`
	Pages     []int  `json:"pages"`
}

// ResolvedPlan is a Plan ready to hand to the merger
type ResolvedPlan struct {
	Items      []ResolvedItem `json:"items"`
	OutputPath string         `json:"output_path"`
	Overwrite  bool           `json:"overwrite"`
	TotalPages int            `json:"total_pages"`
}

// PageCounter reads the current page count of a source file
type PageCounter interface {
	PageCount(path string) (int, error)
}

// NewPlan builds a plan from parallel inputs, applying defaultSelection
// to items with an empty selection
func NewPlan(items []Item, outputPath, defaultSelection string, overwrite bool) (Plan, error) {
	if len(items) == 0 {
		return Plan{}, fmt.Errorf("merge plan has no input files")
	}
	if outputPath == "" {
		return Plan{}, fmt.Errorf("merge plan has no output path")
	}

	planned := make([]Item, len(items))
	for i, item := range items {
		if item.Path == "" {
			return Plan{}, fmt.Errorf("merge plan item %d has no path", i+1)
		}
		planned[i] = item
		if planned[i].Selection == "" {
			planned[i].Selection = defaultSelection
		}
	}

	return Plan{
		Items:      planned,
		OutputPath: outputPath,
		Overwrite:  overwrite,
	}, nil
}

// Resolve evaluates every item's selection against the file's current
// page count. One invalid file or expression fails the whole plan, so a
// merge never silently proceeds with a partially correct input list.
// Resolution is never cached: page counts are only trustworthy at the
// moment the merge is triggered.
func Resolve(plan Plan, counter PageCounter) (*ResolvedPlan, error) {
	if len(plan.Items) == 0 {
		return nil, fmt.Errorf("merge plan has no input files")
	}

	resolved := &ResolvedPlan{
		Items:      make([]ResolvedItem, 0, len(plan.Items)),
		OutputPath: plan.OutputPath,
		Overwrite:  plan.Overwrite,
	}

	for _, item := range plan.Items {
		pageCount, err := counter.PageCount(item.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(item.Path), err)
		}

		pages, err := selection.Resolve(item.Selection, pageCount)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(item.Path), err)
		}

		resolved.Items = append(resolved.Items, ResolvedItem{
			Path:      item.Path,
			Selection: item.Selection,
			PageCount: pageCount,
			Pages:     pages,
		})
		resolved.TotalPages += len(pages)
	}

	return resolved, nil
}

// MergeRequest converts a resolved plan into the PDF service's merge request
func (rp *ResolvedPlan) MergeRequest() pdf.PDFMergeRequest {
	inputs := make([]pdf.MergeInput, len(rp.Items))
	for i, item := range rp.Items {
		inputs[i] = pdf.MergeInput{
			Path:  item.Path,
			Pages: item.Pages,
		}
	}

	return pdf.PDFMergeRequest{
		Inputs:     inputs,
		OutputPath: rp.OutputPath,
		Overwrite:  rp.Overwrite,
	}
}

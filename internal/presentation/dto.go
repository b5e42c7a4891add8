package presentation

import (
	"fmt"

	"github.com/zjrosen/conddispatch/internal/dispatch"
)

// GroupDTO is a dispatch group as listed by the CLI.
type GroupDTO struct {
	Name       string         `json:"name"`
	Version    uint64         `json:"version"`
	Candidates []CandidateDTO `json:"candidates"`
}

// CandidateDTO is one candidate of a group, in resolution order.
type CandidateDTO struct {
	ID      string `json:"id"`
	Order   int    `json:"order"`
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// ResultDTO is the outcome of one dispatched call.
type ResultDTO struct {
	Index   int    `json:"index"`
	Group   string `json:"group"`
	Args    string `json:"args"`
	Outcome string `json:"outcome"`
	Value   any    `json:"value,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FromSnapshot converts a group snapshot to a DTO.
func FromSnapshot(s dispatch.Snapshot) GroupDTO {
	cands := s.Candidates()
	dtos := make([]CandidateDTO, len(cands))
	for i, c := range cands {
		dtos[i] = CandidateDTO{
			ID:      c.ID.String(),
			Order:   c.Order,
			Name:    c.Name(),
			Default: c.Default,
		}
	}
	return GroupDTO{Name: s.Group, Version: s.Version, Candidates: dtos}
}

// FromRegistry lists every group of reg, sorted by name.
func FromRegistry(reg *dispatch.Registry) []GroupDTO {
	names := reg.Groups()
	out := make([]GroupDTO, len(names))
	for i, name := range names {
		out[i] = FromSnapshot(reg.Snapshot(name))
	}
	return out
}

// NewResult records the outcome of call index i.
func NewResult(i int, group string, args dispatch.Args, value any, err error) ResultDTO {
	r := ResultDTO{
		Index:   i,
		Group:   group,
		Args:    args.String(),
		Outcome: string(dispatch.Classify(err)),
	}
	if err != nil {
		r.Error = err.Error()
	} else {
		r.Value = value
	}
	return r
}

// WithOutcome replaces the outcome derived from the error chain, typically
// with one observed at resolution time.
func (r ResultDTO) WithOutcome(o dispatch.Outcome) ResultDTO {
	r.Outcome = string(o)
	return r
}

// Line renders r without styling.
func (r ResultDTO) Line() string {
	call := fmt.Sprintf("#%d %s%s", r.Index, r.Group, r.Args)
	if r.Error != "" {
		return fmt.Sprintf("%s ! %s: %s", call, r.Outcome, r.Error)
	}
	return fmt.Sprintf("%s = %v", call, r.Value)
}

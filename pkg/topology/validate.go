package topology

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/topodraw/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the structure of t: node names, port addresses, edge
// endpoints and capacity values must be present and sane, and node names
// must be unique within their group.
//
// Validate does not require port addresses to be unique and does not
// require edges to resolve; the layout engine tolerates both.
func Validate(t Topology) error {
	if err := structValidator().Struct(t); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTopology, err, "%s", describe(err))
	}
	for _, group := range []struct {
		name  string
		nodes []Node
	}{{"top", t.Top}, {"bottom", t.Bottom}} {
		seen := make(map[string]bool, len(group.nodes))
		for _, n := range group.nodes {
			if err := errors.ValidateNodeName(n.Name); err != nil {
				return err
			}
			if seen[n.Name] {
				return errors.New(errors.ErrCodeInvalidTopology, "duplicate node name %q in %s group", n.Name, group.name)
			}
			seen[n.Name] = true
		}
	}
	return nil
}

// DuplicateAddresses returns every port address that appears on more than
// one port, sorted. The layout engine resolves such addresses to the port
// placed last.
func DuplicateAddresses(t Topology) []string {
	counts := make(map[string]int)
	for _, p := range t.Ports() {
		counts[p.Address]++
	}
	var dups []string
	for addr, n := range counts {
		if n > 1 {
			dups = append(dups, addr)
		}
	}
	slices.Sort(dups)
	return dups
}

// describe flattens validator field errors into a single readable line.
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", ns, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", ns, fe.Tag()))
		}
	}
	return "invalid topology: " + strings.Join(parts, "; ")
}

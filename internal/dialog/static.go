package dialog

import "context"

// Static returns a fixed selection. An empty list behaves as a cancelled dialog.
type Static struct {
	Paths []string
}

// NewStatic creates a chooser that always selects paths
func NewStatic(paths ...string) *Static {
	return &Static{Paths: paths}
}

func (s *Static) Name() string { return "static" }

func (s *Static) Choose(ctx context.Context, req Request) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.Paths) == 0 {
		return nil, ErrCancelled
	}
	if !req.Multiple {
		return []string{s.Paths[0]}, nil
	}
	return append([]string(nil), s.Paths...), nil
}

package common

import "context"

// Viewer is the resolved identity behind a request. The zero value is an
// anonymous viewer.
type Viewer struct {
	UserID        uint64
	Username      string
	Authenticated bool
}

func Anonymous() Viewer {
	return Viewer{}
}

func AsUser(userID uint64) Viewer {
	return Viewer{UserID: userID, Authenticated: true}
}

// Is reports whether the viewer is the authenticated user id.
func (v Viewer) Is(userID uint64) bool {
	return v.Authenticated && v.UserID == userID
}

type viewerKey struct{}

func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

func ViewerFrom(ctx context.Context) Viewer {
	if v, ok := ctx.Value(viewerKey{}).(Viewer); ok {
		return v
	}
	return Anonymous()
}

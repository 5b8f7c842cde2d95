// Package router keeps the stack of terminal screens. Screens navigate by
// returning one of the *Msg commands below; the router applies them and
// forwards everything else to the screen on top.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mandela/internal/screen"
)

// PushScreenMsg opens Screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg closes the top screen. Ignored at the root.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the top screen, e.g. question → summary.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// PopToRootMsg closes everything above the home screen.
type PopToRootMsg struct{}

// Refresher is implemented by screens that reload data when they are
// revealed again.
type Refresher interface {
	Refresh() tea.Cmd
}

type Router struct {
	stack []screen.Screen
}

// New creates a router whose root is home. home.Init is left to the caller.
func New(home screen.Screen) *Router {
	return &Router{stack: []screen.Screen{home}}
}

func (r *Router) top() int { return len(r.stack) - 1 }

func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

func (r *Router) Replace(s screen.Screen) tea.Cmd {
	r.stack[r.top()] = s
	return s.Init()
}

func (r *Router) Pop() tea.Cmd {
	return r.truncate(r.top())
}

func (r *Router) PopToRoot() tea.Cmd {
	return r.truncate(1)
}

// truncate keeps the first n screens (at least one) and refreshes the
// revealed screen when anything was removed.
func (r *Router) truncate(n int) tea.Cmd {
	n = max(n, 1)
	if n >= len(r.stack) {
		return nil
	}
	clear(r.stack[n:])
	r.stack = r.stack[:n]
	if rf, ok := r.Active().(Refresher); ok {
		return rf.Refresh()
	}
	return nil
}

// Active is the screen on top.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[r.top()]
}

func (r *Router) Depth() int {
	return len(r.stack)
}

// Update applies navigation messages and passes the rest to Active.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case PopToRootMsg:
		return r.PopToRoot()
	}

	next, cmd := r.Active().Update(msg)
	r.stack[r.top()] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}

package scene

// List owns the views in focus order: index 0 is the most recently focused.
type List struct {
	views []*View
}

// NewList returns an empty list.
func NewList() *List {
	return &List{}
}

// Len returns the number of views, mapped or not.
func (l *List) Len() int {
	return len(l.views)
}

// Add appends v at the back.
func (l *List) Add(v *View) {
	l.views = append(l.views, v)
}

// Remove drops the view with id and returns it.
func (l *List) Remove(id ID) (*View, bool) {
	i := l.index(id)
	if i < 0 {
		return nil, false
	}
	v := l.views[i]
	l.views = append(l.views[:i], l.views[i+1:]...)
	return v, true
}

// Get looks a view up by id.
func (l *List) Get(id ID) (*View, bool) {
	i := l.index(id)
	if i < 0 {
		return nil, false
	}
	return l.views[i], true
}

// Front returns the first view regardless of mapping.
func (l *List) Front() *View {
	if len(l.views) == 0 {
		return nil
	}
	return l.views[0]
}

// Focused returns the front view when it is mapped.
func (l *List) Focused() *View {
	v := l.Front()
	if v == nil || !v.Mapped {
		return nil
	}
	return v
}

// Focus moves the view with id to the front, deactivating the previous
// focus and activating the new one. It reports whether focus changed.
func (l *List) Focus(id ID) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	v := l.views[i]
	prev := l.Focused()
	if prev == v {
		return false
	}
	if prev != nil {
		prev.SetActivated(false)
	}

	copy(l.views[1:i+1], l.views[:i])
	l.views[0] = v

	v.SetActivated(true)
	return true
}

// CycleFocus focuses the next mapped view and sends the previously
// frontmost mapped view to the back. Unmapped views are skipped. It
// returns the newly focused view, or nil with fewer than two mapped views.
func (l *List) CycleFocus() *View {
	mapped := l.Mapped()
	if len(mapped) < 2 {
		return nil
	}
	current, next := mapped[0], mapped[1]
	if l.Focused() != current {
		current.SetActivated(false)
	}
	l.Focus(next.ID)

	i := l.index(current.ID)
	l.views = append(l.views[:i], l.views[i+1:]...)
	l.views = append(l.views, current)
	return next
}

// FirstMapped returns the frontmost mapped view.
func (l *List) FirstMapped() *View {
	for _, v := range l.views {
		if v.Mapped {
			return v
		}
	}
	return nil
}

// All returns the views front to back. The slice is a copy.
func (l *List) All() []*View {
	out := make([]*View, len(l.views))
	copy(out, l.views)
	return out
}

// Mapped returns the mapped views front to back.
func (l *List) Mapped() []*View {
	var out []*View
	for _, v := range l.views {
		if v.Mapped {
			out = append(out, v)
		}
	}
	return out
}

func (l *List) index(id ID) int {
	for i, v := range l.views {
		if v.ID == id {
			return i
		}
	}
	return -1
}

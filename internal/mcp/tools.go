package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/floatile/internal/manager"
	"github.com/1broseidon/floatile/internal/store"
)

func (s *Server) handleCreateWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CreateWindowInput) (*mcpsdk.CallToolResult, CreateWindowOutput, error) {
	if args.ID == "" {
		return nil, CreateWindowOutput{}, fmt.Errorf("id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.mgr.CreateWindow(manager.WindowSpec{
		ID:      store.WindowID(args.ID),
		Title:   args.Title,
		Content: args.Content,
	})
	if err != nil {
		return nil, CreateWindowOutput{}, err
	}
	s.mgr.FlushHooks()

	c := s.mgr.Store().ContainerOf(w.ID)
	return nil, CreateWindowOutput{
		ID:          string(w.ID),
		ContainerID: string(c.ID),
		X:           c.Rect.X,
		Y:           c.Rect.Y,
		Width:       c.Rect.Width,
		Height:      c.Rect.Height,
	}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowIDInput) (*mcpsdk.CallToolResult, WindowActionOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := s.mgr.Window(store.WindowID(args.ID)) != nil
	s.mgr.CloseWindow(store.WindowID(args.ID))
	return nil, WindowActionOutput{ID: args.ID, Found: found}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.mgr.Store()
	out := ListWindowsOutput{
		Windows:    []WindowInfo{},
		Containers: []ContainerInfo{},
	}

	for _, w := range st.Windows() {
		active := false
		if c := st.ContainerOf(w.ID); c != nil {
			active = c.ActiveWindowID == w.ID
		}
		out.Windows = append(out.Windows, WindowInfo{
			ID:          string(w.ID),
			Title:       w.Title,
			ContainerID: string(w.ContainerID),
			Minimized:   w.Minimized,
			Detached:    w.Detached,
			Active:      active,
		})
	}

	for _, c := range st.Containers() {
		ids := make([]string, len(c.WindowIDs))
		for i, id := range c.WindowIDs {
			ids[i] = string(id)
		}
		out.Containers = append(out.Containers, ContainerInfo{
			ID:        string(c.ID),
			WindowIDs: ids,
			ActiveID:  string(c.ActiveWindowID),
			Minimized: c.Minimized,
			Hidden:    c.Hidden,
			ZOrder:    c.ZOrder,
			X:         c.Rect.X,
			Y:         c.Rect.Y,
			Width:     c.Rect.Width,
			Height:    c.Rect.Height,
		})
	}

	return nil, out, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowIDInput) (*mcpsdk.CallToolResult, WindowActionOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := s.mgr.Window(store.WindowID(args.ID)) != nil
	s.mgr.FocusWindow(store.WindowID(args.ID))
	return nil, WindowActionOutput{ID: args.ID, Found: found}, nil
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, MoveWindowOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := store.WindowID(args.ID)
	if s.mgr.Window(id) == nil {
		return nil, MoveWindowOutput{}, fmt.Errorf("unknown window %q", args.ID)
	}
	if args.Target == "" {
		s.mgr.MoveWindowToNewContainer(id)
	} else {
		if s.mgr.Store().Container(store.ContainerID(args.Target)) == nil {
			return nil, MoveWindowOutput{}, fmt.Errorf("unknown container %q", args.Target)
		}
		s.mgr.MoveWindowToContainer(id, store.ContainerID(args.Target))
	}

	c := s.mgr.Store().ContainerOf(id)
	out := MoveWindowOutput{ID: args.ID}
	if c != nil {
		out.ContainerID = string(c.ID)
	}
	return nil, out, nil
}

func (s *Server) handleMergeContainers(_ context.Context, _ *mcpsdk.CallToolRequest, args MergeContainersInput) (*mcpsdk.CallToolResult, MergeContainersOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.mgr.Store()
	if st.Container(store.ContainerID(args.Source)) == nil {
		return nil, MergeContainersOutput{}, fmt.Errorf("unknown container %q", args.Source)
	}
	tgt := st.Container(store.ContainerID(args.Target))
	if tgt == nil {
		return nil, MergeContainersOutput{}, fmt.Errorf("unknown container %q", args.Target)
	}

	s.mgr.MergeContainers(store.ContainerID(args.Source), store.ContainerID(args.Target))

	order := make([]string, len(tgt.WindowIDs))
	for i, id := range tgt.WindowIDs {
		order[i] = string(id)
	}
	return nil, MergeContainersOutput{
		Target:   args.Target,
		TabOrder: order,
	}, nil
}

func (s *Server) handleMinimizeContainer(_ context.Context, _ *mcpsdk.CallToolRequest, args ContainerIDInput) (*mcpsdk.CallToolResult, ContainerActionOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := s.mgr.Store().Container(store.ContainerID(args.ID)) != nil
	s.mgr.MinimizeContainer(store.ContainerID(args.ID))
	return nil, ContainerActionOutput{ID: args.ID, Found: found}, nil
}

func (s *Server) handleRestoreContainer(_ context.Context, _ *mcpsdk.CallToolRequest, args ContainerIDInput) (*mcpsdk.CallToolResult, ContainerActionOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := s.mgr.Store().Container(store.ContainerID(args.ID)) != nil
	s.mgr.RestoreContainer(store.ContainerID(args.ID))
	return nil, ContainerActionOutput{ID: args.ID, Found: found}, nil
}

func (s *Server) handleDetachWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowIDInput) (*mcpsdk.CallToolResult, DetachWindowOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := store.WindowID(args.ID)
	w := s.mgr.Window(id)
	if w == nil {
		return nil, DetachWindowOutput{}, fmt.Errorf("unknown window %q", args.ID)
	}

	s.mgr.DetachWindow(id)
	return nil, DetachWindowOutput{
		ID:       args.ID,
		Detached: w.Detached,
	}, nil
}

package ecs

import "testing"

func TestEntityTableCreateDestroyRecycle(t *testing.T) {
	tbl := newEntityTable(newLayout(Width32))

	e1 := tbl.create()
	e2 := tbl.create()
	e3 := tbl.create()
	_ = e1
	_ = e3

	tbl.destroy(e2)
	e4 := tbl.create()

	if tbl.layout.index(e4) != tbl.layout.index(e2) {
		t.Fatalf("expected recycled slot to reuse index %d, got %d", tbl.layout.index(e2), tbl.layout.index(e4))
	}
	if tbl.layout.generation(e4) != tbl.layout.generation(e2)+1 {
		t.Fatalf("expected generation to bump by one on reuse")
	}
	if tbl.valid(e2) {
		t.Fatalf("stale handle e2 must be invalid after recycle")
	}
	if !tbl.valid(e4) {
		t.Fatalf("freshly created e4 must be valid")
	}
	if tbl.live != 3 {
		t.Fatalf("expected 3 live entities, got %d", tbl.live)
	}
}

func TestEntityTableParentChild(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T, tbl *entityTable)
	}{
		{
			name: "add_child_sets_symmetric_links",
			run: func(t *testing.T, tbl *entityTable) {
				p, c := tbl.create(), tbl.create()
				tbl.addChild(p, c)
				if tbl.parentOf(c) != p {
					t.Fatalf("child's parent not set")
				}
				kids := tbl.childrenOf(p)
				if len(kids) != 1 || kids[0] != c {
					t.Fatalf("parent's children not set: %v", kids)
				}
			},
		},
		{
			name: "cycle_rejected",
			run: func(t *testing.T, tbl *entityTable) {
				a, b, c := tbl.create(), tbl.create(), tbl.create()
				tbl.addChild(a, b)
				tbl.addChild(b, c)
				defer func() {
					if recover() == nil {
						t.Fatalf("expected panic making c a parent of a (cycle)")
					}
				}()
				tbl.addChild(c, a)
			},
		},
		{
			name: "self_parent_rejected",
			run: func(t *testing.T, tbl *entityTable) {
				a := tbl.create()
				defer func() {
					if recover() == nil {
						t.Fatalf("expected panic on self-parenting")
					}
				}()
				tbl.addChild(a, a)
			},
		},
		{
			name: "already_parented_rejected",
			run: func(t *testing.T, tbl *entityTable) {
				p1, p2, c := tbl.create(), tbl.create(), tbl.create()
				tbl.addChild(p1, c)
				defer func() {
					if recover() == nil {
						t.Fatalf("expected panic re-parenting an already-parented child")
					}
				}()
				tbl.addChild(p2, c)
			},
		},
		{
			name: "set_parent_moves_child",
			run: func(t *testing.T, tbl *entityTable) {
				p1, p2, c := tbl.create(), tbl.create(), tbl.create()
				tbl.addChild(p1, c)
				tbl.setParent(c, p2)
				if tbl.parentOf(c) != p2 {
					t.Fatalf("expected c reparented to p2")
				}
				if len(tbl.childrenOf(p1)) != 0 {
					t.Fatalf("expected p1 to have no children left")
				}
			},
		},
		{
			name: "set_parent_null_unlinks",
			run: func(t *testing.T, tbl *entityTable) {
				p, c := tbl.create(), tbl.create()
				tbl.addChild(p, c)
				tbl.setParent(c, tbl.layout.null)
				if tbl.parentOf(c) != tbl.layout.null {
					t.Fatalf("expected c to be a root")
				}
			},
		},
		{
			name: "is_child_of_walks_ancestors",
			run: func(t *testing.T, tbl *entityTable) {
				a, b, c := tbl.create(), tbl.create(), tbl.create()
				tbl.addChild(a, b)
				tbl.addChild(b, c)
				if !tbl.isChildOf(c, a) {
					t.Fatalf("expected c to descend from a")
				}
				if tbl.isChildOf(a, c) {
					t.Fatalf("did not expect a to descend from c")
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tbl := newEntityTable(newLayout(Width32))
			tc.run(t, &tbl)
		})
	}
}

func TestEntityTableDestroyDetachesChildren(t *testing.T) {
	tbl := newEntityTable(newLayout(Width32))
	root, c1, c2 := tbl.create(), tbl.create(), tbl.create()
	tbl.addChild(root, c1)
	tbl.addChild(root, c2)

	tbl.destroy(root)

	if tbl.valid(root) {
		t.Fatalf("root should be invalid after destroy")
	}
	if !tbl.valid(c1) || !tbl.valid(c2) {
		t.Fatalf("children should remain valid")
	}
	if tbl.parentOf(c1) != tbl.layout.null || tbl.parentOf(c2) != tbl.layout.null {
		t.Fatalf("children should be roots after parent destroyed")
	}
}

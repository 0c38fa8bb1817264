package pattern

import (
	"fmt"

	tp "github.com/xlab/treeprint"
)

// Dump renders a pattern tree for debugging.
func Dump(p Pattern) string {
	tree := tp.New()
	dump(tree, p)
	return tree.String()
}

func label(p Pattern) string {
	l := fmt.Sprintf("%s %s", p.Variant(), p.String())
	if name := p.BindName(); name != "" {
		if _, ok := p.(WildcardPattern); !ok {
			l += " → " + name
		}
	}
	return l
}

func dump(tree tp.Tree, p Pattern) {
	switch p := p.(type) {
	case GroupPattern:
		conn := "all"
		if p.conn == Or {
			conn = "any"
		}
		b := tree.AddBranch(fmt.Sprintf("group %s", conn))
		for _, sub := range p.patterns {
			dump(b, sub)
		}
	case ListPattern:
		name := "list"
		if p.mapped {
			name = "map"
		}
		b := tree.AddBranch(name)
		for _, sub := range p.patterns {
			dump(b, sub)
		}
	case AssocPattern:
		b := tree.AddBranch("entry")
		dump(b.AddBranch("key"), p.key)
		if p.val != nil {
			dump(b.AddBranch("value"), p.val)
		}
	case ObjectPattern:
		name := "object"
		if p.spec != nil {
			name += " " + p.spec.Describe()
		}
		b := tree.AddBranch(name)
		for _, prop := range p.props {
			if prop.Pattern == nil {
				b.AddNode(prop.Name)
				continue
			}
			dump(b.AddBranch(prop.Name), prop.Pattern)
		}
	case DestructurePattern:
		b := tree.AddBranch("at" + p.path.String())
		if p.inner != nil {
			dump(b, p.inner)
		}
	default:
		tree.AddNode(label(p))
	}
}

package xsd

import "strings"

// DumpTree renders the subtree rooted at n, one node per line.
func (n *Node) DumpTree() string {
	var sb strings.Builder
	n.dump(&sb, "")
	return sb.String()
}

func (n *Node) dump(sb *strings.Builder, prefix string) {
	childPrefix := prefix + "  "
	if n.IsIndicator() {
		sb.WriteString(prefix + "[ " + string(n.indicator) + " " + n.Cardinality() + "\n")
		for _, c := range n.children {
			c.dump(sb, childPrefix)
		}
		sb.WriteString(prefix + "]\n")
		return
	}

	name := n.name
	if n.attribute {
		name = "@" + name
	}
	fields := []string{name, n.Cardinality(), n.dataType.String()}
	if n.documentation != "" {
		fields = append(fields, n.documentation)
	}
	if r := n.RestrictionsText(); r != "" {
		fields = append(fields, r)
	}
	if v, ok := n.Fixed(); ok {
		fields = append(fields, "fixedValue="+v)
	} else if v, ok := n.Default(); ok {
		fields = append(fields, "defaultValue="+v)
	}
	sb.WriteString(prefix + strings.Join(fields, " ") + "\n")

	if n.IsRecursive() {
		sb.WriteString(childPrefix + "... recursive definition, children omitted\n")
		return
	}
	for _, c := range n.children {
		c.dump(sb, childPrefix)
	}
}

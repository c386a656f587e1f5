// Package xsd builds a simplified structural model of an XML Schema.
//
// The model is a tree of *Node values. Every node is either an indicator
// (sequence, choice, all), an element or attribute declaration, or a
// wildcard (any, anyAttribute). Children are kept in declaration order,
// which is what the translators in pkg/transcode rely on to emit XML in
// schema order regardless of the order of keys in a JSON document.
//
// # Parsing
//
// A Parser reads one schema document through a DocumentSource and builds
// the tree for a requested root element:
//
//	cache := xsd.NewCache()
//	p, err := cache.Get(ctx, "testdata/Order.xsd", xsd.NewFileSource())
//	if err != nil {
//	    return err
//	}
//	root, err := p.Parse(ctx, "Order")
//
// A root may also be a slash separated path ("Order/Products") addressing an
// element declared inside another element's anonymous type.
//
// Imports are resolved lazily through the Cache, so every schema location
// is read and indexed at most once per Cache.
//
// # Recursion
//
// Self-referential type definitions are not expanded. When a node has the
// same type identity and name as one of its ancestors it becomes an alias
// of that ancestor: Children and Child delegate to the ancestor and the
// tree stays finite.
//
// Trees are immutable once Parse returns and may be shared between
// goroutines.
package xsd

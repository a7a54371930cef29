package http

import (
	"github.com/shapestone/shape-core/pkg/ast"
)

var zeroPos = ast.Position{}

// ToNode converts a SimplifiedRequest to an AST ObjectNode, the shape used by
// predicate engines built on shape-core:
//
//	{ "requestFrom": "10.0.0.5:53100", "method": "POST", "path": "/orders",
//	  "query": {"id": "9"},
//	  "headers": {"Content-Type": "application/x-www-form-urlencoded"},
//	  "body": "sku=ABC", "ip": "10.0.0.5",
//	  "form": {"sku": "ABC"} }
//
// Repeated keys in query, headers and form become arrays of literals.
// "form" is only present when req.Form is set.
func ToNode(req *SimplifiedRequest) ast.SchemaNode {
	props := map[string]ast.SchemaNode{
		"requestFrom": ast.NewLiteralNode(req.RequestFrom, zeroPos),
		"method":      ast.NewLiteralNode(req.Method, zeroPos),
		"path":        ast.NewLiteralNode(req.Path, zeroPos),
		"query":       valuesToNode(req.Query),
		"headers":     valuesToNode(req.Headers.Values),
		"body":        ast.NewLiteralNode(req.Body, zeroPos),
		"ip":          ast.NewLiteralNode(req.IP, zeroPos),
	}
	if req.Form != nil {
		props["form"] = valuesToNode(*req.Form)
	}
	return ast.NewObjectNode(props, zeroPos)
}

// NodeToInterface converts an AST node to native Go types.
func NodeToInterface(node ast.SchemaNode) interface{} {
	switch n := node.(type) {
	case *ast.LiteralNode:
		return n.Value()
	case *ast.ArrayDataNode:
		elements := n.Elements()
		arr := make([]interface{}, len(elements))
		for i, elem := range elements {
			arr[i] = NodeToInterface(elem)
		}
		return arr
	case *ast.ObjectNode:
		props := n.Properties()
		m := make(map[string]interface{}, len(props))
		for k, v := range props {
			m[k] = NodeToInterface(v)
		}
		return m
	default:
		return nil
	}
}

func valuesToNode(v Values) ast.SchemaNode {
	props := make(map[string]ast.SchemaNode, v.Len())
	for _, k := range v.keys {
		vals := v.vals[k]
		if len(vals) == 1 {
			props[k] = ast.NewLiteralNode(vals[0], zeroPos)
			continue
		}
		elements := make([]ast.SchemaNode, len(vals))
		for i, val := range vals {
			elements[i] = ast.NewLiteralNode(val, zeroPos)
		}
		props[k] = ast.NewArrayDataNode(elements, zeroPos)
	}
	return ast.NewObjectNode(props, zeroPos)
}

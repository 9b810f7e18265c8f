package extract

import (
	"go/ast"
	"reflect"
	"strconv"
	"strings"
)

// fieldTags is what the generator reads from a struct tag.
//
// Supported tags:
//   - zorsh:"name"        serialized name
//   - zorsh:"-"           skip field
//   - zorsh:",tuple"      anonymous-struct enum case rendered as a tuple
//   - zorshtype:"u64"     override the inferred shape (primitive name or string)
//   - borsh_skip:"true"   borsh-go skip marker
//   - borsh_enum:"true"   borsh-go enum discriminant marker
//   - json:"name"         fallback serialized name
type fieldTags struct {
	Name      string
	JSONName  string
	Skip      bool
	Tuple     bool
	Override  string
	BorshEnum bool
}

func parseFieldTags(tag *ast.BasicLit) fieldTags {
	var info fieldTags
	if tag == nil {
		return info
	}

	value, err := strconv.Unquote(tag.Value)
	if err != nil {
		value = strings.Trim(tag.Value, "`")
	}
	st := reflect.StructTag(value)

	if zt, ok := st.Lookup("zorsh"); ok {
		if zt == "-" {
			info.Skip = true
			return info
		}
		parts := strings.Split(zt, ",")
		info.Name = parts[0]
		for _, opt := range parts[1:] {
			if opt == "tuple" {
				info.Tuple = true
			}
		}
	}

	if st.Get("borsh_skip") == "true" {
		info.Skip = true
		return info
	}
	info.BorshEnum = st.Get("borsh_enum") == "true"

	if jt := st.Get("json"); jt != "" {
		name, _, _ := strings.Cut(jt, ",")
		if name != "-" {
			info.JSONName = name
		}
	}

	info.Override = strings.TrimSpace(st.Get("zorshtype"))
	return info
}

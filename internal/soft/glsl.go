package soft

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	reComment = regexp.MustCompile(`(?s)//[^\n]*|/\*.*?\*/`)
	reDefine  = regexp.MustCompile(`(?m)^\s*#define\s+(\w+)\s+(\d+)`)
	reStruct  = regexp.MustCompile(`(?s)struct\s+(\w+)\s*\{(.*?)\}\s*;`)
	reField   = regexp.MustCompile(`(\w+)\s+(\w+)\s*(?:\[\s*(\w+)\s*\])?\s*;`)
	reUniform = regexp.MustCompile(`uniform\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\w+)\s*\])?\s*;`)
	reMain    = regexp.MustCompile(`void\s+main\s*\(`)
)

type field struct {
	typ, name string
	count     int // 0 for non-arrays
}

// reflectUniforms lists every uniform name a GL driver would accept for the
// given stages, in declaration order. Struct members expand to "a.b" and
// arrays to "a[i]".
func reflectUniforms(stages ...string) ([]string, error) {
	var names []string
	seen := make(map[string]bool)
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}

	for _, src := range stages {
		src = reComment.ReplaceAllString(src, "")
		if !reMain.MatchString(src) {
			return nil, fmt.Errorf("compile failed: no entry point")
		}

		defines := make(map[string]int)
		for _, m := range reDefine.FindAllStringSubmatch(src, -1) {
			v, _ := strconv.Atoi(m[2])
			defines[m[1]] = v
		}
		arraySize := func(s string) (int, error) {
			if s == "" {
				return 0, nil
			}
			if v, ok := defines[s]; ok {
				return v, nil
			}
			v, err := strconv.Atoi(s)
			if err != nil {
				return 0, fmt.Errorf("compile failed: unknown array size %q", s)
			}
			return v, nil
		}

		structs := make(map[string][]field)
		for _, m := range reStruct.FindAllStringSubmatch(src, -1) {
			var fields []field
			for _, f := range reField.FindAllStringSubmatch(m[2], -1) {
				n, err := arraySize(f[3])
				if err != nil {
					return nil, err
				}
				fields = append(fields, field{typ: f[1], name: f[2], count: n})
			}
			structs[m[1]] = fields
		}
		// Struct bodies may contain text that looks like a uniform.
		body := reStruct.ReplaceAllString(src, "")

		var expand func(prefix string, f field)
		expand = func(prefix string, f field) {
			name := prefix + f.name
			members, isStruct := structs[f.typ]
			emit := func(n string) {
				if !isStruct {
					add(n)
					return
				}
				for _, m := range members {
					expand(n+".", m)
				}
			}
			if f.count == 0 {
				emit(name)
				return
			}
			for i := 0; i < f.count; i++ {
				emit(fmt.Sprintf("%s[%d]", name, i))
			}
		}

		for _, m := range reUniform.FindAllStringSubmatch(body, -1) {
			n, err := arraySize(m[3])
			if err != nil {
				return nil, err
			}
			expand("", field{typ: m[1], name: m[2], count: n})
		}
	}
	return names, nil
}

// Package manifest loads per-model YAML descriptors: name, task metadata,
// and the list of downloadable files with declared sizes and checksums.
// Parsing collects every field violation in one pass rather than stopping
// at the first; unknown fields are ignored for forward compatibility.
package manifest

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"modelfetch/pkg/types"
)

// digest hex lengths per supported algorithm
var digestLen = map[string]int{
	"sha1":   40,
	"sha256": 64,
	"sha384": 96,
	"sha512": 128,
}

// Parse decodes one manifest document into an immutable ModelDescriptor.
// On failure the returned error is a *MalformedError listing every field
// violation found.
func Parse(data []byte, path string) (types.ModelDescriptor, error) {
	var desc types.ModelDescriptor
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return desc, &MalformedError{Path: path, Issues: []Issue{{Field: "document", Msg: err.Error()}}}
	}
	if len(root.Content) == 0 {
		return desc, &MalformedError{Path: path, Issues: []Issue{{Field: "document", Msg: "empty manifest"}}}
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return desc, &MalformedError{Path: path, Issues: []Issue{{Field: "document", Line: doc.Line, Msg: "top level must be a mapping"}}}
	}

	var issues []Issue
	var filesNode *yaml.Node
	nameLine := doc.Line
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "name":
			desc.Name = scalarString(val, "name", &issues)
			nameLine = val.Line
		case "description":
			desc.Description = scalarString(val, "description", &issues)
		case "task_type":
			desc.TaskType = scalarString(val, "task_type", &issues)
		case "framework":
			desc.Framework = scalarString(val, "framework", &issues)
		case "license":
			desc.License = scalarString(val, "license", &issues)
		case "files":
			filesNode = val
		default:
			// unknown fields are ignored
		}
	}

	// The name becomes a directory under the destination root, so it must
	// be a single path element.
	if desc.Name == "" {
		issues = append(issues, Issue{Field: "name", Line: doc.Line, Msg: "required field is missing or empty"})
	} else if strings.ContainsAny(desc.Name, `/\`) || desc.Name == "." || desc.Name == ".." {
		issues = append(issues, Issue{Field: "name", Line: nameLine, Msg: "must be a single path element without separators"})
	}
	switch {
	case filesNode == nil:
		issues = append(issues, Issue{Field: "files", Line: doc.Line, Msg: "required field is missing"})
	case filesNode.Kind != yaml.SequenceNode:
		issues = append(issues, Issue{Field: "files", Line: filesNode.Line, Msg: "must be a sequence"})
	case len(filesNode.Content) == 0:
		issues = append(issues, Issue{Field: "files", Line: filesNode.Line, Msg: "must declare at least one file"})
	default:
		seen := make(map[string]bool, len(filesNode.Content))
		for idx, item := range filesNode.Content {
			entry := parseFile(item, idx, &issues)
			if entry.RelativePath != "" {
				if seen[entry.RelativePath] {
					issues = append(issues, Issue{
						Field: fmt.Sprintf("files[%d].name", idx),
						Line:  item.Line,
						Msg:   fmt.Sprintf("duplicate relative path %q", entry.RelativePath),
					})
				}
				seen[entry.RelativePath] = true
			}
			desc.Files = append(desc.Files, entry)
		}
	}

	if len(issues) > 0 {
		return types.ModelDescriptor{}, &MalformedError{Path: path, Issues: issues}
	}
	return desc, nil
}

// parseFile validates one entry of the files sequence.
func parseFile(n *yaml.Node, idx int, issues *[]Issue) types.FileEntry {
	var entry types.FileEntry
	prefix := fmt.Sprintf("files[%d]", idx)
	if n.Kind != yaml.MappingNode {
		*issues = append(*issues, Issue{Field: prefix, Line: n.Line, Msg: "must be a mapping"})
		return entry
	}

	var sizeNode *yaml.Node
	var sha256Val, checksumVal string
	var sha256Line, checksumLine int
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "name":
			entry.RelativePath = scalarString(val, prefix+".name", issues)
		case "size":
			sizeNode = val
		case "sha256":
			sha256Val = scalarText(val, prefix+".sha256", issues)
			sha256Line = val.Line
		case "checksum":
			checksumVal = scalarText(val, prefix+".checksum", issues)
			checksumLine = val.Line
		case "source":
			entry.SourceURI = scalarString(val, prefix+".source", issues)
			if entry.SourceURI != "" {
				if u, err := url.Parse(entry.SourceURI); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
					*issues = append(*issues, Issue{Field: prefix + ".source", Line: val.Line, Msg: "must be an http(s) URL"})
				}
			}
		default:
			// ignored
		}
	}

	if entry.RelativePath == "" {
		*issues = append(*issues, Issue{Field: prefix + ".name", Line: n.Line, Msg: "required field is missing or empty"})
	} else if !safeRelPath(entry.RelativePath) {
		*issues = append(*issues, Issue{Field: prefix + ".name", Line: n.Line, Msg: "must be a relative path without '..' segments"})
	}
	if entry.SourceURI == "" {
		*issues = append(*issues, Issue{Field: prefix + ".source", Line: n.Line, Msg: "required field is missing or empty"})
	}

	if sizeNode == nil {
		*issues = append(*issues, Issue{Field: prefix + ".size", Line: n.Line, Msg: "required field is missing"})
	} else {
		size, ok := scalarInt(sizeNode, prefix+".size", issues)
		if ok && size < 0 {
			*issues = append(*issues, Issue{Field: prefix + ".size", Line: sizeNode.Line, Msg: "must be >= 0"})
		} else if ok {
			entry.SizeBytes = size
		}
	}

	switch {
	case sha256Val == "" && checksumVal == "":
		*issues = append(*issues, Issue{Field: prefix + ".sha256", Line: n.Line, Msg: "required field is missing (sha256 or checksum)"})
	case sha256Val != "" && checksumVal != "":
		*issues = append(*issues, Issue{Field: prefix + ".checksum", Line: checksumLine, Msg: "sha256 and checksum are mutually exclusive"})
	case sha256Val != "":
		entry.Checksum = parseDigest("sha256", sha256Val, prefix+".sha256", sha256Line, issues)
	default:
		algo, dig := "sha256", checksumVal
		if j := strings.IndexByte(checksumVal, ':'); j >= 0 {
			algo, dig = checksumVal[:j], checksumVal[j+1:]
		}
		entry.Checksum = parseDigest(algo, dig, prefix+".checksum", checksumLine, issues)
	}
	return entry
}

// safeRelPath reports whether p stays under the destination root when
// joined: no leading separator, no backslash, no '..' segment. Names with
// consecutive dots inside a segment (a..b) are fine.
func safeRelPath(p string) bool {
	if strings.HasPrefix(p, "/") || strings.Contains(p, `\`) {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}

// parseDigest validates algorithm support and hex digest length.
func parseDigest(algo, dig, field string, line int, issues *[]Issue) types.Checksum {
	want, ok := digestLen[algo]
	if !ok {
		*issues = append(*issues, Issue{Field: field, Line: line, Msg: fmt.Sprintf("unsupported hash algorithm %q", algo)})
		return types.Checksum{}
	}
	if len(dig) != want {
		*issues = append(*issues, Issue{Field: field, Line: line, Msg: fmt.Sprintf("%s digest must be %d hex chars, got %d", algo, want, len(dig))})
		return types.Checksum{}
	}
	if _, err := hex.DecodeString(dig); err != nil {
		*issues = append(*issues, Issue{Field: field, Line: line, Msg: "digest is not valid hex"})
		return types.Checksum{}
	}
	return types.Checksum{Algorithm: algo, Digest: strings.ToLower(dig)}
}

// scalarString returns the node value when it is a string scalar,
// recording an issue otherwise.
func scalarString(n *yaml.Node, field string, issues *[]Issue) string {
	if n.Kind != yaml.ScalarNode || n.Tag != "!!str" {
		*issues = append(*issues, Issue{Field: field, Line: n.Line, Msg: "must be a string"})
		return ""
	}
	return n.Value
}

// scalarText is scalarString for digest fields, where an unquoted
// all-digit value resolves as an integer in YAML.
func scalarText(n *yaml.Node, field string, issues *[]Issue) string {
	if n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		*issues = append(*issues, Issue{Field: field, Line: n.Line, Msg: "must be a string"})
		return ""
	}
	return n.Value
}

// scalarInt returns the node value when it is an integer scalar.
func scalarInt(n *yaml.Node, field string, issues *[]Issue) (int64, bool) {
	if n.Kind != yaml.ScalarNode || n.Tag != "!!int" {
		*issues = append(*issues, Issue{Field: field, Line: n.Line, Msg: "must be an integer"})
		return 0, false
	}
	v, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		*issues = append(*issues, Issue{Field: field, Line: n.Line, Msg: "must be an integer"})
		return 0, false
	}
	return v, true
}

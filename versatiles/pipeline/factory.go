package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/versatiles-org/go-versatiles/versatiles"
)

// VPLNode is one parsed stage of a pipeline configuration: a tag name plus
// its key="value" parameters. Full YAML/VPL configuration parsing is out
// of scope (spec.md §1 Non-goals); this is the minimal line-oriented
// reader SPEC_FULL.md calls for, enough to drive construction end to end.
type VPLNode struct {
	Tag    string
	Params map[string]string
}

var paramPattern = regexp.MustCompile(`(\w+)=(?:"([^"]*)"|(\S+))`)

// parseVPLNode splits one pipe-delimited stage into its tag and params.
func parseVPLNode(stage string) (VPLNode, error) {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return VPLNode{}, fmt.Errorf("empty pipeline stage")
	}
	fields := strings.SplitN(stage, " ", 2)
	node := VPLNode{Tag: fields[0], Params: map[string]string{}}
	if len(fields) == 1 {
		return node, nil
	}
	for _, m := range paramPattern.FindAllStringSubmatch(fields[1], -1) {
		key := m[1]
		value := m[2]
		if value == "" {
			value = m[3]
		}
		node.Params[key] = value
	}
	return node, nil
}

// ParamBool parses a VPLNode's boolean parameter, defaulting to false when
// absent.
func (n VPLNode) ParamBool(key string) bool {
	v, ok := n.Params[key]
	if !ok {
		return false
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// ParamString returns a VPLNode's string parameter, or "" when absent.
func (n VPLNode) ParamString(key string) string {
	return n.Params[key]
}

// PipelineFactory parses a pipeline configuration, recursively constructing
// children before parents, per spec.md §4.9.
type PipelineFactory struct {
	basePath  string
	logger    *log.Logger
	mockRoots map[string]Operation
}

// NewPipelineFactory builds a factory resolving data-source paths relative
// to basePath.
func NewPipelineFactory(basePath string, logger *log.Logger) *PipelineFactory {
	if logger == nil {
		logger = log.Default()
	}
	return &PipelineFactory{basePath: basePath, logger: logger, mockRoots: map[string]Operation{}}
}

// NewDummyPipelineFactory returns a factory with no base path, for tests,
// mirroring the Rust test harness's PipelineFactory::new_dummy().
func NewDummyPipelineFactory() *PipelineFactory {
	return NewPipelineFactory("", nil)
}

// ResolvePath joins a data-source path against the factory's base path.
func (f *PipelineFactory) ResolvePath(path string) string {
	if f.basePath == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(f.basePath, path)
}

// RegisterMockRoot makes a named in-memory Operation available to the
// "from_mock name=..." leaf tag, for tests.
func (f *PipelineFactory) RegisterMockRoot(name string, op Operation) {
	f.mockRoots[name] = op
}

// BuildFromText parses a "tag params | tag params | ..." pipeline
// declaration and constructs the resulting Operation tree, children before
// parents.
func (f *PipelineFactory) BuildFromText(text string) (Operation, error) {
	stages := strings.Split(text, "|")
	if len(stages) == 0 {
		return nil, fmt.Errorf("empty pipeline")
	}

	leafNode, err := parseVPLNode(stages[0])
	if err != nil {
		return nil, err
	}
	current, err := f.buildLeaf(leafNode)
	if err != nil {
		return nil, err
	}

	for _, stageText := range stages[1:] {
		node, err := parseVPLNode(stageText)
		if err != nil {
			return nil, err
		}
		current, err = f.buildTransform(node, current)
		if err != nil {
			return nil, err
		}
	}

	return current, nil
}

func (f *PipelineFactory) buildLeaf(node VPLNode) (Operation, error) {
	switch node.Tag {
	case "from_mock":
		name := node.ParamString("name")
		op, ok := f.mockRoots[name]
		if !ok {
			return nil, fmt.Errorf("from_mock: no registered mock root %q", name)
		}
		return op, nil
	default:
		return nil, fmt.Errorf("unknown leaf operation tag %q", node.Tag)
	}
}

func (f *PipelineFactory) buildTransform(node VPLNode, source Operation) (Operation, error) {
	switch node.Tag {
	case "vectortiles_update_properties":
		args := VectorTilePropertyRewriteArgs{
			DataSourcePath:    node.ParamString("data_source_path"),
			IDFieldTiles:      node.ParamString("id_field_tiles"),
			IDFieldData:       node.ParamString("id_field_data"),
			LayerName:         node.ParamString("layer_name"),
			ReplaceProperties: node.ParamBool("replace_properties"),
			RemoveNonMatching: node.ParamBool("remove_non_matching"),
			IncludeID:         node.ParamBool("include_id"),
		}
		file, err := os.Open(f.ResolvePath(args.DataSourcePath))
		if err != nil {
			return nil, fmt.Errorf("vectortiles_update_properties: opening data source %q: %w", args.DataSourcePath, &versatiles.IoError{Op: "open csv", Err: err})
		}
		defer file.Close()

		rows, err := loadCSVRows(file)
		if err != nil {
			return nil, fmt.Errorf("vectortiles_update_properties: reading csv %q: %w", args.DataSourcePath, err)
		}

		return NewVectorTilePropertyRewriteOperation(args, rows, source, f.logger)
	default:
		return nil, fmt.Errorf("unknown transform operation tag %q", node.Tag)
	}
}

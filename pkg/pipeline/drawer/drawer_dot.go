package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/efigueira/genre-classification/internal/store"
	"github.com/efigueira/genre-classification/pkg/pipeline/measure"
)

// DOTDrawer is a drawer that writes the pipeline graph in the graphviz DOT language.
// Statements are written in the order steps and links were added.
type DOTDrawer struct {
	graph       graph.Graph[string, string]
	store       *store.Ordered[string, string]
	dotFileName string
}

// NewDOTDrawer creates a new DOT drawer.
func NewDOTDrawer(dotFileName string) *DOTDrawer {
	st := store.NewOrdered[string, string]()

	return &DOTDrawer{
		dotFileName: dotFileName,
		graph:       graph.NewWithStore(graph.StringHash, st, graph.Directed()),
		store:       st,
	}
}

func (d *DOTDrawer) setAttributes(stepName string, attributes map[string]string) error {
	err := d.store.UpdateVertex(stepName, func(properties *graph.VertexProperties) {
		for k, v := range attributes {
			properties.Attributes[k] = v
		}
	})
	if err != nil {
		return errors.Wrapf(err, "unable to update %s vertex properties", stepName)
	}

	return nil
}

// AddStep adds a step to the pipeline graph.
func (d *DOTDrawer) AddStep(name string) error {
	err := d.graph.AddVertex(name, graph.VertexAttribute("shape", "box"))
	if err != nil {
		return errors.Wrapf(err, "unable to add vertex %s", name)
	}

	return nil
}

// AddLink adds an execution order link between parent and child steps.
func (d *DOTDrawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

// AddArtifact labels the link from producer to consumer with the artifact, adding a dashed link if the steps are
// not consecutive.
func (d *DOTDrawer) AddArtifact(producerName, consumerName, artifact string) error {
	edge, err := d.graph.Edge(producerName, consumerName)
	if errors.Is(err, graph.ErrEdgeNotFound) {
		err = d.graph.AddEdge(producerName, consumerName,
			graph.EdgeAttribute("label", artifact),
			graph.EdgeAttribute("style", "dashed"),
		)
		if err != nil {
			return errors.Wrapf(err, "unable to add edge from %s to %s", producerName, consumerName)
		}

		return nil
	}

	if err != nil {
		return errors.Wrapf(err, "unable to get edge from %s to %s", producerName, consumerName)
	}

	label := artifact
	if existing := edge.Properties.Attributes["label"]; existing != "" {
		label = existing + `\n` + artifact
	}

	err = d.graph.UpdateEdge(producerName, consumerName, graph.EdgeAttribute("label", label))
	if err != nil {
		return errors.Wrap(err, "unable to update edge")
	}

	return nil
}

// SetFailed marks the step in red.
func (d *DOTDrawer) SetFailed(stepName string) error {
	return d.setAttributes(stepName, map[string]string{"color": "red", "penwidth": "2"})
}

// SetTotalTime sets the total time for the step.
func (d *DOTDrawer) SetTotalTime(stepName string, total time.Duration) error {
	return d.setAttributes(stepName, map[string]string{"xlabel": total.String()})
}

const maxRGB = 240

// AddMeasure labels every measured step with its duration and colours it from blue (fastest) to red (slowest).
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	durations := msr.Durations()
	if len(durations) == 0 {
		return nil
	}

	sorted := make([]time.Duration, 0, len(durations))
	for _, elapsed := range durations {
		sorted = append(sorted, elapsed)
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] > sorted[j]
	})

	maxValue := sorted[0]
	minValue := sorted[len(sorted)-1]

	for name, elapsed := range durations {
		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(elapsed-minValue) / float64(maxValue-minValue)
		}

		red := maxRGB * fraction
		blue := maxRGB - red

		colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
		if err != nil {
			return errors.Wrap(err, "unable to get colour")
		}

		hex := colour.ToHEX().String()

		err = d.store.UpdateVertex(name, func(properties *graph.VertexProperties) {
			properties.Attributes["xlabel"] = elapsed.String()
			if _, failed := properties.Attributes["color"]; !failed {
				properties.Attributes["color"] = hex
			}
		})
		if err != nil {
			return errors.Wrapf(err, "unable to update %s vertex properties", name)
		}
	}

	return nil
}

// Draw writes the DOT file.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.dotFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.dotFileName)
	}
	defer file.Close()

	err = dot(d.graph.Traits().IsDirected, d.store, file)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.dotFileName)
	}

	return nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot[K comparable, T any](directed bool, st *store.Ordered[K, T], wrt io.Writer) error {
	desc, err := generateDOT(directed, st)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

func generateDOT[K comparable, T any](directed bool, st *store.Ordered[K, T]) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   map[string]string{"rankdir": "LR"},
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	if directed {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	vertices, err := st.ListVertices()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list vertices")
	}

	for _, vertex := range vertices {
		_, sourceProperties, err := st.Vertex(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		attributes := make(map[string]string, len(sourceProperties.Attributes))
		htmlAttributes := make(map[string]string)

		for k, v := range sourceProperties.Attributes {
			if k == "xlabel" {
				htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, v)
				continue
			}

			attributes[k] = v
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: attributes,
			HTMLAttributes:   htmlAttributes,
		})
	}

	edges, err := st.ListEdges()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list edges")
	}

	for _, edge := range edges {
		desc.Statements = append(desc.Statements, statement{
			Source:         edge.Source,
			Target:         edge.Target,
			EdgeWeight:     edge.Properties.Weight,
			EdgeAttributes: edge.Properties.Attributes,
		})
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)

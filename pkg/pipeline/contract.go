package pipeline

import (
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/efigueira/genre-classification/internal/store"
	"github.com/efigueira/genre-classification/pkg/pipeline/model"
)

const artifactAttribute = "artifact"

// dependencies holds the producer -> consumer graph of the step table.
type dependencies struct {
	graph      graph.Graph[model.StepID, model.StepID]
	store      *store.Ordered[model.StepID, model.StepID]
	violations []ContractViolation
}

// handover is an artifact passed from producer to the consuming step.
type handover struct {
	producer model.StepID
	artifact model.ArtifactRef
}

func stepHash(id model.StepID) model.StepID { return id }

// buildDependencies links every consumed artifact to the step producing it. Edges carry the artifact references
// in the "artifact" attribute.
func (p *Pipeline) buildDependencies() (*dependencies, error) {
	deps := &dependencies{
		store: store.NewOrdered[model.StepID, model.StepID](),
	}
	deps.graph = graph.NewWithStore(stepHash, deps.store, graph.Directed())

	producers := make(map[string]model.StepID)
	position := make(map[model.StepID]int, len(p.steps))

	for i, def := range p.steps {
		err := deps.graph.AddVertex(def.id)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add step %s", def.id)
		}

		position[def.id] = i

		for _, out := range def.outputs(p.cfg) {
			producers[out] = def.id
		}
	}

	for _, def := range p.steps {
		for _, in := range def.inputs(p.cfg) {
			if in.External {
				continue
			}

			producer, ok := producers[in.Name]
			if !ok {
				deps.violations = append(deps.violations, ContractViolation{
					Consumer: def.id,
					Artifact: in,
					Err:      ErrNoProducer,
				})

				continue
			}

			if position[producer] >= position[def.id] {
				deps.violations = append(deps.violations, ContractViolation{
					Consumer: def.id,
					Artifact: in,
					Producer: producer,
					Err:      ErrBackwardDependency,
				})

				continue
			}

			err := deps.link(producer, def.id, in)
			if err != nil {
				return nil, err
			}
		}
	}

	return deps, nil
}

func (d *dependencies) link(producer, consumer model.StepID, artifact model.ArtifactRef) error {
	err := d.graph.AddEdge(producer, consumer, graph.EdgeAttribute(artifactAttribute, artifact.String()))
	if err == nil {
		return nil
	}

	if !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to link %s to %s", producer, consumer)
	}

	edge, err := d.graph.Edge(producer, consumer)
	if err != nil {
		return errors.Wrapf(err, "unable to get edge from %s to %s", producer, consumer)
	}

	joined := edge.Properties.Attributes[artifactAttribute] + "," + artifact.String()

	err = d.graph.UpdateEdge(producer, consumer, graph.EdgeAttribute(artifactAttribute, joined))
	if err != nil {
		return errors.Wrapf(err, "unable to update edge from %s to %s", producer, consumer)
	}

	return nil
}

// upstream returns the artifacts handed to step id, in declaration order.
func (d *dependencies) upstream(id model.StepID) ([]handover, error) {
	edges, err := d.store.ListEdges()
	if err != nil {
		return nil, errors.Wrap(err, "unable to list edges")
	}

	var res []handover

	for _, edge := range edges {
		if edge.Target != id {
			continue
		}

		for _, ref := range strings.Split(edge.Properties.Attributes[artifactAttribute], ",") {
			res = append(res, handover{producer: edge.Source, artifact: model.ParseArtifactRef(ref)})
		}
	}

	return res, nil
}

// CheckContracts reports every consumed artifact that no earlier step produces. Artifacts taken from the
// configuration, such as the reference dataset, are not checked.
func (p *Pipeline) CheckContracts() ([]ContractViolation, error) {
	deps, err := p.buildDependencies()
	if err != nil {
		return nil, err
	}

	return deps.violations, nil
}

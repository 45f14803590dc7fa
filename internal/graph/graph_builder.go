package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"

	"truckspec/internal/catalog"
)

// RunFunc executes a single Cypher statement.
type RunFunc func(ctx context.Context, cypher string, params map[string]any) error

// GraphBuilder mirrors the catalogue into Neo4j as
// (Brand)-[:MAKES]->(Model)-[:OFFERS_ENGINE|OFFERS_TRANSMISSION]->(component).
type GraphBuilder struct {
	run RunFunc
}

// NewGraphBuilder creates a builder that opens a session per statement.
func NewGraphBuilder(driver neo4j.DriverWithContext) *GraphBuilder {
	return NewGraphBuilderWithRunner(func(ctx context.Context, cypher string, params map[string]any) error {
		session := driver.NewSession(ctx, neo4j.SessionConfig{})
		defer session.Close(ctx)

		result, err := session.Run(ctx, cypher, params)
		if err != nil {
			return err
		}
		_, err = result.Consume(ctx)
		return err
	})
}

// NewGraphBuilderWithRunner creates a builder on top of an arbitrary runner.
func NewGraphBuilderWithRunner(run RunFunc) *GraphBuilder {
	return &GraphBuilder{run: run}
}

// Connect creates a driver and verifies connectivity.
func Connect(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")
	return driver, nil
}

// EnsureSchema creates the uniqueness constraints the merges rely on.
func (gb *GraphBuilder) EnsureSchema(ctx context.Context) error {
	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (b:Brand) REQUIRE b.name IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (m:Model) REQUIRE (m.brand, m.name) IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (e:Engine) REQUIRE e.code IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (t:Transmission) REQUIRE t.code IS UNIQUE",
	}

	for _, c := range constraints {
		if err := gb.run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

const (
	mergeModelCypher = `
		MERGE (b:Brand {name: $brand})
		MERGE (m:Model {brand: $brand, name: $model})
		MERGE (b)-[:MAKES]->(m)`

	mergeEngineCypher = `
		MATCH (m:Model {brand: $brand, name: $model})
		MERGE (e:Engine {code: $code})
		SET e.name = $name, e.rated_power = $rated_power, e.torque = $torque, e.rpm_limit = $rpm_limit
		MERGE (m)-[:OFFERS_ENGINE]->(e)`

	mergeTransmissionCypher = `
		MATCH (m:Model {brand: $brand, name: $model})
		MERGE (t:Transmission {code: $code})
		SET t.name = $name, t.speeds = $speeds, t.retarder = $retarder, t.ratio = $ratio
		MERGE (m)-[:OFFERS_TRANSMISSION]->(t)`
)

// Publish merges every model and component of doc into the graph.
func (gb *GraphBuilder) Publish(ctx context.Context, doc catalog.Document) error {
	models := 0
	for _, brand := range doc.Brands() {
		for _, m := range doc[brand] {
			if err := gb.publishModel(ctx, m); err != nil {
				return fmt.Errorf("publish %s.%s: %w", m.Brand, m.Model, err)
			}
			models++
		}
	}

	log.Info().Int("brands", len(doc)).Int("models", models).Msg("Published catalogue to Neo4j")
	return nil
}

func (gb *GraphBuilder) publishModel(ctx context.Context, m catalog.ModelEntry) error {
	if err := gb.run(ctx, mergeModelCypher, map[string]any{
		"brand": m.Brand,
		"model": m.Model,
	}); err != nil {
		return fmt.Errorf("merge model: %w", err)
	}

	for _, e := range m.Engines {
		if err := gb.run(ctx, mergeEngineCypher, map[string]any{
			"brand":       m.Brand,
			"model":       m.Model,
			"code":        e.Code,
			"name":        e.Name,
			"rated_power": e.RatedPower,
			"torque":      e.Torque,
			"rpm_limit":   e.RPMLimit,
		}); err != nil {
			return fmt.Errorf("merge engine %s: %w", e.Code, err)
		}
	}

	for _, t := range m.Transmissions {
		if err := gb.run(ctx, mergeTransmissionCypher, map[string]any{
			"brand":    m.Brand,
			"model":    m.Model,
			"code":     t.Code,
			"name":     t.Name,
			"speeds":   t.Speeds,
			"retarder": t.Retarder,
			"ratio":    t.Ratio,
		}); err != nil {
			return fmt.Errorf("merge transmission %s: %w", t.Code, err)
		}
	}

	return nil
}

package search

import (
	"context"
	"regexp"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var capitalizedWordPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z]{2,}\b`)

// extractEntities is a minimal candidate-entity extractor: capitalized
// words of length >= 3. Good enough for boosting, not a substitute for a
// real NER pipeline (out of scope for this runtime).
func extractEntities(query string) []string {
	matches := capitalizedWordPattern.FindAllString(query, -1)
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// Neo4jGraphBooster implements GraphBooster against a Neo4j knowledge
// graph: candidate entities extracted from the query are matched against
// node names, and documents whose ID is linked to a matched entity via a
// MENTIONS relationship get a boost proportional to how many matched
// entities they mention.
type Neo4jGraphBooster struct {
	driver neo4j.DriverWithContext
}

func NewNeo4jGraphBooster(driver neo4j.DriverWithContext) *Neo4jGraphBooster {
	return &Neo4jGraphBooster{driver: driver}
}

func (g *Neo4jGraphBooster) BoostScores(ctx context.Context, query string, candidateIDs []string) (map[string]float64, error) {
	entities := extractEntities(query)
	if len(entities) == 0 || len(candidateIDs) == 0 {
		return map[string]float64{}, nil
	}

	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, `
			MATCH (d:Document)-[:MENTIONS]->(e:Entity)
			WHERE d.id IN $ids AND e.name IN $entities
			RETURN d.id AS id, count(e) AS mentions
		`, map[string]any{"ids": candidateIDs, "entities": entities})
		if err != nil {
			return nil, err
		}

		counts := make(map[string]float64)
		for records.Next(ctx) {
			rec := records.Record()
			id, _ := rec.Get("id")
			mentions, _ := rec.Get("mentions")
			idStr, _ := id.(string)
			count, _ := mentions.(int64)
			counts[idStr] = float64(count)
		}
		return counts, records.Err()
	})
	if err != nil {
		return nil, err
	}

	counts, _ := result.(map[string]float64)
	maxEntities := float64(len(entities))
	boosts := make(map[string]float64, len(counts))
	for id, count := range counts {
		boosts[id] = count / maxEntities
	}
	return boosts, nil
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/rutabus/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	stationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Station",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.String},
			"code": &graphql.Field{Type: graphql.String},
			"name": &graphql.Field{Type: graphql.String},
		},
	})

	scheduleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Schedule",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.String},
			"source":            &graphql.Field{Type: stationType},
			"destination":       &graphql.Field{Type: stationType},
			"estimated_arrival": &graphql.Field{Type: graphql.DateTime},
		},
	})

	searchResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ScheduleSearchResult",
		Fields: graphql.Fields{
			"message":   &graphql.Field{Type: graphql.String},
			"schedules": &graphql.Field{Type: graphql.NewList(scheduleType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"stations": &graphql.Field{
				Type:        graphql.NewList(stationType),
				Description: "List all stations",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Stations.List(p.Context)
				},
			},
			"station": &graphql.Field{
				Type:        stationType,
				Description: "Get a station by code",
				Args: graphql.FieldConfigArgument{
					"code": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					code := p.Args["code"].(string)
					return deps.Stations.GetByCode(p.Context, code)
				},
			},
			"searchStations": &graphql.Field{
				Type:        graphql.NewList(stationType),
				Description: "Search stations by name",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					limit := p.Args["limit"].(int)
					return deps.Stations.Search(p.Context, q, limit)
				},
			},
			"searchSchedules": &graphql.Field{
				Type:        searchResultType,
				Description: "Search available schedules between two stations on a date",
				Args: graphql.FieldConfigArgument{
					"source":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"destination": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"date":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					source := p.Args["source"].(string)
					destination := p.Args["destination"].(string)
					date := p.Args["date"].(string)
					return deps.Schedules.Search(p.Context, usecases.SearchQuery{
						SourceCode:      &source,
						DestinationCode: &destination,
						Date:            &date,
					})
				},
			},
			"stationDepartures": &graphql.Field{
				Type:        graphql.NewList(scheduleType),
				Description: "Next schedules leaving a station",
				Args: graphql.FieldConfigArgument{
					"code":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					code := p.Args["code"].(string)
					limit := p.Args["limit"].(int)
					return deps.Schedules.DeparturesFrom(p.Context, code, limit)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}

// Package casematch ranks catalog records by weighted multi-attribute
// similarity to a partial query.
//
// Every attribute is numeric, categorical or boolean. A query names only the
// attributes the caller cares about; the rest are ignored. Each participating
// attribute contributes a similarity in [0, 1], and the score is their
// weighted average.
//
// # Untyped API
//
//	eng, _ := casematch.New([]casematch.Attribute{
//	    {Name: "Level", Kind: casematch.Numeric, Min: 0, Max: 9},
//	    {Name: "School", Kind: casematch.Categorical},
//	    {Name: "Ritual", Kind: casematch.Boolean},
//	}, casematch.WithWeights(map[string]casematch.Weight{
//	    "Ritual": {Value: 0.5, Enabled: true},
//	}))
//	res, _ := eng.Rank(casematch.Query{"Level": 3, "School": "Evocation"}, records,
//	    casematch.WithLimit(5))
//
// # Typed API
//
//	type Spell struct {
//	    Name   string  `casematch:",key"`
//	    Level  int     `casematch:"Level,numeric,min=0,max=9"`
//	    School string  `casematch:"School,categorical"`
//	    Ritual bool    `casematch:"Ritual,boolean,weight=0.5"`
//	}
//
//	eng, _ := casematch.NewTyped[Spell]()
//	hits, _ := eng.RankItems(casematch.Query{"School": "Evocation"}, spells)
//	similar, _ := eng.Like(spells[0], spells, casematch.WithLimit(3))
package casematch

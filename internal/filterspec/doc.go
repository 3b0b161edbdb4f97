// Package filterspec reads filter documents written in YAML, JSON or CUE.
//
// A document names the record kind and a predicate tree:
//
//	kind: artifact
//	where:
//	  and:
//	    - column: properties_accuracy.double_value
//	      op: ">"
//	      value: 0.9
//	    - or:
//	        - column: uri
//	          op: like
//	          value: "gs://%"
//	        - not:
//	            column: custom_properties_owner.string_value
//	            op: is null
//
// A column is either a direct attribute ("uri") or a neighbor field
// ("contexts_pipeline.name"). Decoding produces an unresolved tree: neighbor
// columns are not typed until the resolver has checked them.
package filterspec

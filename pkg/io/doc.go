// Package io reads and writes the JSON documents exchanged by the CLI, the
// HTTP API and the plan cache.
//
// # Descriptor Documents
//
// A descriptor document lists the modules to solve:
//
//	{
//	  "modules": [
//	    {"id": "core", "version": "1.2.0"},
//	    {
//	      "id": "physics",
//	      "name": "Physics",
//	      "version": "0.4.0",
//	      "required": ["core:[1.0.0,2.0.0)"],
//	      "loadAfter": ["audio"],
//	      "loadBefore": ["render;hud"]
//	    }
//	  ]
//	}
//
// Only id and version are required. Each relation entry is a dependency spec
// or a ';'-separated list of them. Use [ReadDescriptors] and
// [WriteDescriptors]; [MarshalCanonical] produces the byte form used for
// cache keys, independent of input order.
//
// # Plan Documents
//
// A plan document records a resolution:
//
//	{
//	  "policy": "id-and-range",
//	  "order": ["core", "physics"],
//	  "edges": [
//	    {"from": "physics", "to": "core", "relation": "required", "spec": "core:[1.0.0,2.0.0)"}
//	  ]
//	}
//
// Edges point from dependent to dependency. [NewPlanDocument] converts a
// solved plan, and [PlanDocument.Restore] rebuilds the plan given the
// descriptors it was solved from.
package io

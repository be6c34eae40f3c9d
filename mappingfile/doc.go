// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package mappingfile loads declarative mapping definitions and compiles
them into executable mappings.

A definition is a YAML document naming the mapping, its source and target
formats, an ordered rule list, and optional validation phases:

	name: order-to-invoice
	source_format: json
	target_format: json

	rules:
	  - direct:
	      from: customer.first_name
	      to: recipient.first
	      transform: [trim, uppercase]
	  - collection:
	      from: items
	      to: lines
	      as: item
	      rules:
	        - combine:
	            from: [$item.price, $item.quantity]
	            to: total
	            function: product

	validation:
	  pre:
	    - field: customer.first_name
	      checks: [required, non-empty]
	  post:
	    - group: sum-equals
	      paths: [lines.0.total, lines.1.total, grand_total]

Each rule entry carries exactly one rule variant (direct, bulk,
collection, branch, nest, flatten, combine) and may set independent: true
so its failure does not stop execution. Guard and branch conditions are
CEL expressions over the variables source and vars.

Documents are checked against an embedded JSON schema before decoding, so
malformed definitions fail with schema errors rather than half-decoded
rules. Compile resolves transformer and function names eagerly against the
registries the caller passes in; an unknown name fails compilation, never
execution.

LoadFile reads one definition from an explicit path. Find locates a
definition by name, searching the directories in $REMAP_MAPPING_PATH and
then the remap/mappings directory under the XDG config home.
*/
package mappingfile

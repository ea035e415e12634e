// Package loader reads batch files into ordered action lists.
//
// A batch file is a YAML document whose top level is an object with a
// single "actions" sequence:
//
//	actions:
//	  - name: create-user
//	    url: https://api.example.com/users
//	    method: post
//	    header:
//	      Authorization: Bearer abc
//	    body:
//	      name: alice
//
// Documents are checked against an embedded JSON schema before they are
// decoded, and loading is all-or-nothing: any violation yields a
// ParseError and no actions.
package loader

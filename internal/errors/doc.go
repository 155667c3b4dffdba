// Package errors provides structured, actionable error messages for the
// mall server and CLI.
//
// Every registered error has a code that maps to a short message, a
// longer explanation and, where one exists, a hint.
//
// # Error Codes
//
//   - E1xx: configuration (mall.json, flags)
//   - E2xx: routing (unresolved locations, invalid table)
//   - E3xx: views (missing bundles, failed loads)
//   - E4xx: CLI and server lifecycle
//
// Classify maps errors returned by the router and view packages onto
// these codes, and HTTPStatus picks the response status for them.
//
// # Usage
//
//	err := errors.New("E101").
//	    WithOffset("mall.json", data, syntaxErr.Offset).
//	    Wrap(syntaxErr)
//
//	errors.Fprint(os.Stderr, err)
//	// Output:
//	// ERROR E101 Invalid config JSON
//	//   at mall.json:3:15
//	//       3 |     "port": 80a0
//	//         |               ^
//	//   Cause: invalid character 'a' after object key:value pair
package errors

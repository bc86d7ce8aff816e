// Package report turns a notice.Recorder into report documents and reads
// those documents back.
//
// # Document format
//
//	{
//	  "notices": [
//	    {
//	      "code": "<notice code>",
//	      "severity": "INFO|WARNING|ERROR",
//	      "totalNotices": <true count>,
//	      "notices": [ <context>, ... ]
//	    }
//	  ]
//	}
//
// Validation notices and system errors are exported as separate documents.
// Groups are ordered by ascending code+severity. totalNotices is the true
// occurrence count and may exceed the number of samples; samples keep the
// recorder's insertion order and are cut at the export cap. Contexts are
// passed through unchanged.
//
// # Reading
//
// ParseBytes builds an immutable ValidationReport together with the set of
// error-level codes, the input of regression comparison. Structural problems
// fail the whole parse with a *MalformedReportError.
package report

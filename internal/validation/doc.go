// Package validation runs compiled shape plans and collects their
// violation output into a report. A run either produces a report (empty
// means the data conforms) or fails with the first store or compile
// error, which aborts the whole run.
package validation

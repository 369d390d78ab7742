/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package field

import "errors"

// Error kinds shared by every package of the field graph. Callers test for
// them with errors.Is; returned errors wrap them with context.
var (
	// ErrInvalidArgument reports nil, empty or out-of-range inputs.
	ErrInvalidArgument = errors.New("fieldgraph(field): invalid argument")
	// ErrSelfDependency reports an edit that would make a field depend on itself.
	ErrSelfDependency = errors.New("fieldgraph(field): field would depend on itself")
	// ErrCrossManagerDependency reports sources that span managers.
	ErrCrossManagerDependency = errors.New("fieldgraph(field): fields belong to different managers")
	// ErrShapeChangeWhileInUse reports a component count change of a field in use.
	ErrShapeChangeWhileInUse = errors.New("fieldgraph(field): cannot change number of components while field is in use")
	// ErrDuplicateName reports a name already used by a different field.
	ErrDuplicateName = errors.New("fieldgraph(field): name already in use")
	// ErrTypeMismatch reports a field whose core is not of the expected type.
	ErrTypeMismatch = errors.New("fieldgraph(field): field type mismatch")
	// ErrDerivativesUnavailable reports derivatives requested from a field
	// type that cannot supply them.
	ErrDerivativesUnavailable = errors.New("fieldgraph(field): derivatives unavailable")
	// ErrEvaluationFailed reports a location outside a field's domain or a
	// failed source evaluation.
	ErrEvaluationFailed = errors.New("fieldgraph(field): evaluation failed")
	// ErrInUse reports an edit refused because the field is referenced.
	ErrInUse = errors.New("fieldgraph(field): field is in use")
	// ErrReadOnly reports a structural edit of a read-only field.
	ErrReadOnly = errors.New("fieldgraph(field): field is read only")
	// ErrNotFound reports a missing field.
	ErrNotFound = errors.New("fieldgraph(field): field not found")
	// ErrUnsupported reports an operation the field type does not implement.
	ErrUnsupported = errors.New("fieldgraph(field): operation not supported by field type")
)

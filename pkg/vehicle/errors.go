/*
 * Copyright (C) 2019-Present Pivotal Software, Inc. All rights reserved.
 *
 * This program and the accompanying materials are made available under the terms
 * of the Apache License, Version 2.0 (the "License”); you may not use this file
 * except in compliance with the License. You may obtain a copy of the License at:
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed
 * under the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR
 * CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 */

package vehicle

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidArgument = errors.New("invalid argument")
)

// ValidationError reports a rejected velocity write. The entity keeps its previous value.
type ValidationError struct {
	Entity EntityName
	Axis   Axis
	Value  interface{}
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("v%s of '%s' must be numeric, got %T(%v): unchanged", ve.Axis, ve.Entity, ve.Value, ve.Value)
}

func (ve *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

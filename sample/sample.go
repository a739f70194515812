/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package sample provides samplers of random *big.Int values from
// various probability distributions: uniform over an interval and
// several flavours of the discrete Gaussian distribution. Samplers
// draw their entropy directly from crypto/rand; precomputed tables are
// immutable after construction, so a sampler may be shared for
// concurrent reads.
package sample

import "math/big"

// Sampler is the interface implemented by all samplers in this
// package. Sample returns a single random value.
type Sampler interface {
	Sample() (*big.Int, error)
}

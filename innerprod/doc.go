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

// Package innerprod contains functional encryption schemes for inner
// products: a holder of a functional key derived from a vector y
// learns the inner product of y with an encrypted vector x and nothing
// else about x.
//
// Schemes secure against selective adversaries live in the subpackage
// simple; schemes secure against adaptive adversaries live in the
// subpackage fullysec.
package innerprod

// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package config loads optional run settings for subzip.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   HCL    | |   JSON   |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

The folder URL and output name always come from the command line; the config
file only carries settings that stay the same between runs (host, staging
location, exclude patterns).

🔍 Example (.subzip.yaml):

	host: https://github.com
	staging_dir: /tmp
	exclude:
	  - "vendor/**"
	  - "testdata/**"

The same settings in HCL:

	host        = "https://github.com"
	staging_dir = "/tmp"
	exclude     = ["vendor/**", "testdata/**"]
*/
package config

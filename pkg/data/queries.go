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

package data

// language=sql
var TrajectoryQuery = `
select ts.occurs_at
     , ts.kind
     , v.name
     , v.variant
     , ts.pos_x
     , ts.pos_y
     , ts.pos_z
     , ts.vel_x
     , ts.vel_y
     , ts.vel_z
from trajectory_samples ts
         join vehicles v on v.id = ts.vehicle
where ts.scenario_run_id = (select id from scenario_runs where run_uuid = ?)
order by ts.occurs_at asc, ts.id asc
;
`

// language=sql
var IgnoredEventsQuery = `
select occurs_at
     , kind
     , vehicle_name
     , reason
     , detail
from ignored_events
where scenario_run_id = (select id from scenario_runs where run_uuid = ?)
order by occurs_at asc, id asc
;
`

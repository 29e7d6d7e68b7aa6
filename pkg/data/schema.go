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
var Schema = `create table if not exists scenario_runs
(
    id                 integer primary key, -- aliases to rowid
    run_uuid           text        not null,

    recorded           text        not null,
    scenario_name      text        not null,
    origin             text        not null,

    simulated_duration big integer not null,
    tick_interval      big integer not null
);
create unique index if not exists scenario_runs_uuid on scenario_runs (run_uuid);

create table if not exists vehicles
(
    id              integer primary key, -- aliases to rowid
    name            text    not null,
    variant         text    not null,

    scenario_run_id integer not null references scenario_runs (id)
);
create unique index if not exists vehicles_name_per_run on vehicles (name, scenario_run_id);

create table if not exists trajectory_samples
(
    id              integer primary key,  -- aliases to rowid
    occurs_at       unsigned big integer, -- unsigned int to avoid being an alias to rowid
    kind            text    not null,

    vehicle         integer not null references vehicles (id),

    -- planar vehicles leave the z components at zero
    pos_x           real    not null,
    pos_y           real    not null,
    pos_z           real    not null default 0,
    vel_x           real    not null,
    vel_y           real    not null,
    vel_z           real    not null default 0,

    scenario_run_id integer not null references scenario_runs (id)
);

create table if not exists ignored_events
(
    id              integer primary key,  -- aliases to rowid
    occurs_at       unsigned big integer, -- unsigned int to avoid being an alias to rowid
    kind            text    not null,
    vehicle_name    text    not null default '',
    reason          text    not null,
    detail          text    not null default '',

    scenario_run_id integer not null references scenario_runs (id)
);
`

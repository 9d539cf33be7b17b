// Package idl implements the schema+data parser at the core of a
// FlatBuffers-style binary serialization toolchain.
//
// It consumes an Interface Definition Language describing tables, structs,
// enums and unions, together with a single textual object literal
// conforming to that schema, and produces a finished binary buffer laid
// out per the FlatBuffers wire format (vtables, back-to-front offsets,
// struct in-lining, union discriminants).
//
// # Schema language
//
//	enum Color: byte { Red, Green, Blue }
//	union Equipment { Weapon }
//	table Weapon { name: string; }
//	table Monster {
//	  pos: Vec3;
//	  hp: short = 100;
//	  name: string;
//	  inventory: [ubyte];
//	  color: Color = Blue;
//	  weapons: [Weapon];
//	  equipped: Equipment;
//	}
//	struct Vec3 { x: float; y: float; z: float; }
//	root_type Monster;
//
// Tables and structs may be referenced before they are declared; an enum
// or union must be declared before a field uses it.
//
// # Object literal
//
//	{
//	  pos: { x: 1, y: 2, z: 3 },
//	  name: "Orc",
//	  inventory: [0, 1, 2],
//	  weapons: [ { name: "Axe" } ],
//	}
//
// # Building the buffer
//
// [Parse] runs both grammars in one pass: schema declarations first, then
// (if a root_type has been set) the single root object literal, which is
// serialized through a real github.com/google/flatbuffers/go Builder. The
// resulting [Registry] carries the compiled schema plus the finished
// buffer bytes and can be reused by external code generators or
// validators; this package does not itself generate source code, print
// buffers, or re-emit JSON.
package idl

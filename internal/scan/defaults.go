package scan

// DefaultModelMethods are conventional ORM query and mutation methods
// (Mongoose, Sequelize and friends).
var DefaultModelMethods = []string{
	"find",
	"findOne",
	"findById",
	"findByIdAndUpdate",
	"findByIdAndDelete",
	"findByIdAndRemove",
	"findOneAndUpdate",
	"findOneAndDelete",
	"findOneAndRemove",
	"findOneAndReplace",
	"findAll",
	"findByPk",
	"findOrCreate",
	"findAndCountAll",
	"create",
	"insertMany",
	"bulkCreate",
	"bulkWrite",
	"update",
	"updateOne",
	"updateMany",
	"upsert",
	"replaceOne",
	"deleteOne",
	"deleteMany",
	"destroy",
	"remove",
	"count",
	"countDocuments",
	"estimatedDocumentCount",
	"aggregate",
	"distinct",
	"exists",
	"where",
	"populate",
	"increment",
	"decrement",
}

// DefaultBuiltinExclusions are language and runtime globals that open mode
// never reports, since calling methods on them is not model usage.
var DefaultBuiltinExclusions = []string{
	"Array",
	"ArrayBuffer",
	"Atomics",
	"BigInt",
	"BigInt64Array",
	"Boolean",
	"Buffer",
	"DataView",
	"Date",
	"Error",
	"EvalError",
	"Float32Array",
	"Float64Array",
	"Function",
	"Int8Array",
	"Int16Array",
	"Int32Array",
	"Intl",
	"JSON",
	"Map",
	"Math",
	"Number",
	"Object",
	"Promise",
	"Proxy",
	"RangeError",
	"ReferenceError",
	"Reflect",
	"RegExp",
	"Set",
	"SharedArrayBuffer",
	"String",
	"Symbol",
	"SyntaxError",
	"TypeError",
	"URIError",
	"URL",
	"URLSearchParams",
	"Uint8Array",
	"Uint8ClampedArray",
	"Uint16Array",
	"Uint32Array",
	"WeakMap",
	"WeakRef",
	"WeakSet",
}

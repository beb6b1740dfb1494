package oracle

import (
	"sync"

	"bugfree/internal/qname"
)

// Классы и интерфейсы ядра PHP и стандартных расширений, которые доступны
// без автозагрузчика.
var builtinNames = []string{
	"stdClass", "Closure", "Generator", "WeakMap", "WeakReference", "Fiber",
	"Traversable", "Iterator", "IteratorAggregate", "ArrayAccess", "Countable",
	"Serializable", "Stringable", "JsonSerializable", "UnitEnum", "BackedEnum",
	"Throwable", "Exception", "ErrorException", "Error", "TypeError", "ValueError",
	"ArithmeticError", "DivisionByZeroError", "ArgumentCountError", "CompileError",
	"ParseError", "UnhandledMatchError",
	"LogicException", "BadFunctionCallException", "BadMethodCallException",
	"DomainException", "InvalidArgumentException", "LengthException",
	"OutOfRangeException", "RuntimeException", "OutOfBoundsException",
	"OverflowException", "RangeException", "UnderflowException",
	"UnexpectedValueException", "JsonException",
	"ArrayObject", "ArrayIterator", "RecursiveArrayIterator", "AppendIterator",
	"CachingIterator", "CallbackFilterIterator", "DirectoryIterator",
	"EmptyIterator", "FilesystemIterator", "FilterIterator", "GlobIterator",
	"InfiniteIterator", "IteratorIterator", "LimitIterator", "MultipleIterator",
	"NoRewindIterator", "OuterIterator", "ParentIterator", "RecursiveIterator",
	"RecursiveCachingIterator", "RecursiveCallbackFilterIterator",
	"RecursiveDirectoryIterator", "RecursiveFilterIterator",
	"RecursiveIteratorIterator", "RecursiveRegexIterator",
	"RecursiveTreeIterator", "RegexIterator", "SeekableIterator",
	"SplDoublyLinkedList", "SplQueue", "SplStack", "SplHeap", "SplMinHeap",
	"SplMaxHeap", "SplPriorityQueue", "SplFixedArray", "SplObjectStorage",
	"SplObserver", "SplSubject", "SplFileInfo", "SplFileObject", "SplTempFileObject",
	"DateTime", "DateTimeImmutable", "DateTimeInterface", "DateTimeZone",
	"DateInterval", "DatePeriod",
	"ReflectionClass", "ReflectionObject", "ReflectionMethod", "ReflectionProperty",
	"ReflectionFunction", "ReflectionParameter", "ReflectionNamedType",
	"ReflectionException", "Reflector",
	"PDO", "PDOStatement", "PDOException",
	"DOMDocument", "DOMElement", "DOMNode", "DOMNodeList", "DOMXPath",
	"SimpleXMLElement", "XMLReader", "XMLWriter",
	"SplEnum", "Attribute", "ReturnTypeWillChange", "AllowDynamicProperties",
	"SensitiveParameter", "Override",
}

var (
	builtinsOnce sync.Once
	builtins     *Registry
)

// Builtins returns the shared registry of core classes. It is built once and
// never modified afterwards.
func Builtins() *Registry {
	builtinsOnce.Do(func() {
		names := make([]qname.Name, 0, len(builtinNames))
		for _, s := range builtinNames {
			names = append(names, qname.Parse(s))
		}
		builtins = NewRegistry(names...)
	})
	return builtins
}

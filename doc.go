/*
Package rubble implements a small Ruby-like scripting language.

Programs are translated into graphs of executable nodes before they run.
Translation resolves every local variable to a frame slot, gives every scope
which can be returned from a unique return ID, and wraps each body in the
catchers for its context, so that running a program never needs to look
anything up by name except methods and constants.

The interpreter can easily be embedded in another program. To start, use the
NewVM function to create and initialize the interpreter, then run source text
with its DoString method:

	vm := rubble.NewVM()
	v, err := vm.DoString(`[1, 2, 3].map { |x| x * x }`, "example", rubble.TopLevelContext)

Built-in methods are primitives registered by class name. Add more with the
VM's Primitives registry at any time; calls consult it only when they run:

	vm.Primitives.Register("Integer", "double", func(vm *rubble.VM, caller *rubble.Frame, self rubble.Value, block *rubble.Proc, args []rubble.Value) (rubble.Value, rubble.Stop) {
		return self.(int64) * 2, rubble.NoStop
	})

Contexts

Source is translated in one of three contexts. Top-level context is for
programs and files; self is the main object, methods defined at the top level
are private, and constants are defined on Object. Shell context is for
interactive input; each line may see the variables of earlier lines, and its
result carries the frame that later lines continue from. Module context is
for code evaluated with a module as self, as by module_eval; constants it
assigns are defined on that module.

Primer

Hello World:

	puts "Hello, world!"

Blocks capture the variables around them, and every block created in the
same frame shares them:

	count = 0
	inc = -> { count += 1 }
	inc.call
	inc.call
	count # => 2

A return in a block returns from the method the block was written in, as long
as that method is still running:

	def first_even(a)
	  a.each { |x| return x if x.even? }
	  nil
	end

Conditions may contain flip-flops, ranges of conditions which turn on when
the left side is true and off after the right side is:

	(1..10).to_a.select { |i| true if (i == 3)..(i == 5) } # => [3, 4, 5]
*/
package rubble
